package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
	"github.com/shandysiswandi/yogapass/internal/pkg/sms"
)

type fakeDB struct {
	mu           sync.Mutex
	profiles     map[entity.PhoneNumber]*entity.Profile
	tokens       map[string]*entity.RefreshTokenInfo
	sessions     []entity.AnonymousSession
	associateErr error
	purgeCutoff  time.Time
}

func newFakeDB(profiles ...entity.Profile) *fakeDB {
	db := &fakeDB{
		profiles: map[entity.PhoneNumber]*entity.Profile{},
		tokens:   map[string]*entity.RefreshTokenInfo{},
	}
	for _, p := range profiles {
		db.profiles[p.Phone] = &p
	}
	return db
}

func (f *fakeDB) FindProfileByPhone(_ context.Context, phone entity.PhoneNumber) (*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.profiles[phone]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeDB) GetProfileByID(_ context.Context, id int64) (*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.profiles {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetRefreshToken(_ context.Context, tokenHash string) (*entity.RefreshTokenInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rt, ok := f.tokens[tokenHash]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

func (f *fakeDB) phoneOf(profileID int64) entity.PhoneNumber {
	for _, p := range f.profiles {
		if p.ID == profileID {
			return p.Phone
		}
	}
	return ""
}

func (f *fakeDB) CreateAnonymousSession(_ context.Context, in entity.AnonymousSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessions = append(f.sessions, in)
	f.tokens[in.RefreshToken.TokenHash] = &entity.RefreshTokenInfo{
		RefreshToken: in.RefreshToken,
		Phone:        f.phoneOf(in.RefreshToken.ProfileID),
	}
	return nil
}

func (f *fakeDB) Associate(_ context.Context, identityID string, profileID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.associateErr != nil {
		return f.associateErr
	}
	for _, p := range f.profiles {
		if p.ID == profileID {
			p.IdentityID = &identityID
			p.LinkedAt = &at
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (f *fakeDB) RotateRefreshToken(_ context.Context, in entity.RotateRefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rt := range f.tokens {
		if rt.ID == in.OldID && rt.RevokedAt == nil {
			now := in.NewToken.CreatedAt
			rt.RevokedAt = &now
			f.tokens[in.NewToken.TokenHash] = &entity.RefreshTokenInfo{RefreshToken: in.NewToken, Phone: rt.Phone}
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (f *fakeDB) RevokeRefreshToken(_ context.Context, tokenHash, identityID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rt, ok := f.tokens[tokenHash]; ok && rt.IdentityID == identityID && rt.RevokedAt == nil {
		rt.RevokedAt = &at
	}
	return nil
}

func (f *fakeDB) PurgeRefreshTokens(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.purgeCutoff = cutoff
	var n int64
	for h, rt := range f.tokens {
		if rt.ExpiresAt.Before(cutoff) || (rt.RevokedAt != nil && rt.RevokedAt.Before(cutoff)) {
			delete(f.tokens, h)
			n++
		}
	}
	return n, nil
}

type fakeSender struct {
	mu     sync.Mutex
	errs   []error
	calls  int
	to     []string
	bodies []string
}

func (f *fakeSender) Send(_ context.Context, to, content string) (sms.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.to = append(f.to, to)
	f.bodies = append(f.bodies, content)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return sms.Receipt{}, err
		}
	}
	return sms.Receipt{Success: true, ProviderStatus: "202", RequestID: "req-1"}, nil
}

func (f *fakeSender) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeMQ struct {
	mu     sync.Mutex
	issued []OtpIssuedEvent
	linked []SessionLinkedEvent
}

func (f *fakeMQ) PublishOtpIssued(_ context.Context, msg OtpIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, msg)
	return nil
}

func (f *fakeMQ) PublishSessionLinked(_ context.Context, msg SessionLinkedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linked = append(f.linked, msg)
	return nil
}

// codeSeq hands out codes in order and repeats the last one.
type codeSeq struct {
	mu    sync.Mutex
	codes []string
}

func (c *codeSeq) Generate() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code := c.codes[0]
	if len(c.codes) > 1 {
		c.codes = c.codes[1:]
	}
	return code, nil
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}
