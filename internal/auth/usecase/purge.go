package usecase

import (
	"context"
	"log/slog"
)

// PurgeSessions deletes refresh tokens that expired or were revoked longer
// than the retention window ago. It runs from the scheduler.
func (s *Usecase) PurgeSessions(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "PurgeSessions")
	defer span.End()

	cutoff := s.clock.Now().Add(-s.policy.PurgeRetention)
	n, err := s.repoDB.PurgeRefreshTokens(ctx, cutoff)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo purge refresh tokens", "cutoff", cutoff, "error", err)
		return 0, err
	}

	slog.InfoContext(ctx, "purged refresh tokens", "deleted", n, "cutoff", cutoff)
	return n, nil
}
