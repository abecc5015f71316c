package usecase

import (
	"context"

	"github.com/shandysiswandi/yogapass/internal/auth/entity"
)

type ConfirmInput struct {
	Phone string
	Code  string
	Meta  entity.ClientMeta
}

// ConfirmCode verifies the code and opens a session in one call.
func (s *Usecase) ConfirmCode(ctx context.Context, in ConfirmInput) (*entity.Session, error) {
	ctx, span := s.startSpan(ctx, "ConfirmCode")
	defer span.End()

	phone, err := s.Verify(ctx, VerifyInput{Phone: in.Phone, Code: in.Code})
	if err != nil {
		return nil, err
	}

	return s.Link(ctx, phone, in.Meta)
}
