package tokensweeper

import (
	"context"
	"time"

	"github.com/nkiryanov/gym/internal/logger"
)

const defaultInterval = 10 * time.Minute

type tokenStore interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically marks tokens with passed refresh expiry as expired.
// Records are kept, only the status changes
type Sweeper struct {
	interval time.Duration
	store    tokenStore
	now      func() time.Time
	logger   logger.Logger
}

func New(store tokenStore, interval time.Duration, now func() time.Time, l logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	if now == nil {
		now = time.Now
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Sweeper{interval: interval, store: store, now: now, logger: l}
}

// Sweep once and return number of expired tokens
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	return s.store.ExpireStale(ctx, s.now())
}

// Run sweeps on every tick until ctx is done. Returned channel is closed when sweeper stopped
func (s *Sweeper) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	s.logger.Debug("Starting token sweeper", "interval", s.interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Debug("Token sweeper stopped by context")
				return

			case <-ticker.C:
				n, err := s.Sweep(ctx)
				if err != nil {
					s.logger.Error("Failed to expire stale tokens", "error", err)
					continue
				}
				if n > 0 {
					s.logger.Info("Stale tokens expired", "count", n)
				}
			}
		}
	}()

	return idleStopped
}
