package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/AlexVocao/login/internal/repository"
)

// ResetTokenJanitor periodically deletes expired reset tokens.
type ResetTokenJanitor struct {
	tokens   repository.ResetTokenRepository
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewResetTokenJanitor creates a janitor sweeping every interval.
func NewResetTokenJanitor(tokens repository.ResetTokenRepository, interval time.Duration, logger *slog.Logger) *ResetTokenJanitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ResetTokenJanitor{tokens: tokens, interval: interval, logger: logger, now: time.Now}
}

// Sweep deletes tokens that have expired by now.
func (j *ResetTokenJanitor) Sweep(ctx context.Context) (int64, error) {
	return j.tokens.DeleteExpired(ctx, j.now())
}

// Run sweeps until ctx is done.
func (j *ResetTokenJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := j.Sweep(ctx)
			if err != nil {
				j.logger.WarnContext(ctx, "sweep expired reset tokens", "error", err)
				continue
			}
			if n > 0 {
				j.logger.InfoContext(ctx, "expired reset tokens removed", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
