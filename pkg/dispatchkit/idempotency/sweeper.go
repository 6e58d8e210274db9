package idempotency

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper evicts finalized records past their retention window. Retention
// must only be long enough to cover realistic at-least-once redelivery; the
// exact TTL is deployment policy.
type Sweeper struct {
	store    Store
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// SweeperConfig configures retention behavior.
type SweeperConfig struct {
	// TTL is how long finalized records are kept. Default: 24h.
	TTL time.Duration

	// Interval is how often eviction runs. Default: 10m.
	Interval time.Duration

	// Logger receives sweep results. Nil disables logging.
	Logger *slog.Logger
}

// DefaultSweeperConfig provides reasonable defaults.
var DefaultSweeperConfig = SweeperConfig{
	TTL:      24 * time.Hour,
	Interval: 10 * time.Minute,
}

// NewSweeper creates a sweeper for the given store.
func NewSweeper(store Store, cfg SweeperConfig) *Sweeper {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSweeperConfig.TTL
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSweeperConfig.Interval
	}
	return &Sweeper{
		store:    store,
		ttl:      cfg.TTL,
		interval: cfg.Interval,
		logger:   cfg.Logger,
	}
}

// Run sweeps on the configured interval until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// SweepNow runs one eviction pass immediately.
func (s *Sweeper) SweepNow(ctx context.Context) (int, error) {
	return s.store.Sweep(ctx, time.Now().Add(-s.ttl))
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	removed, err := s.SweepNow(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("idempotency sweep failed",
				slog.String("error", err.Error()),
			)
		}
		return
	}
	if removed > 0 && s.logger != nil {
		s.logger.Debug("idempotency records evicted",
			slog.Int("removed", removed),
			slog.Duration("ttl", s.ttl),
		)
	}
}
