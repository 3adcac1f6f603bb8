package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig trips the breaker after ConsecutiveFailures store errors
// and probes again once Timeout has passed
type BreakerConfig struct {
	ConsecutiveFailures uint32
	Timeout             time.Duration
}

// BreakerIdempotencyStore fails fast while the wrapped store is down so a
// Redis outage does not add a network timeout to every submission
type BreakerIdempotencyStore struct {
	store   shared.IdempotencyStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerIdempotencyStore wraps store with a circuit breaker
func NewBreakerIdempotencyStore(store shared.IdempotencyStore, cfg BreakerConfig, logger *zap.Logger) *BreakerIdempotencyStore {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BreakerIdempotencyStore{
		store: store,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "idempotency-store",
			MaxRequests: 1,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("idempotency store circuit breaker changed state",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

// MarkProcessed implements shared.IdempotencyStore
func (s *BreakerIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	v, err := s.breaker.Execute(func() (any, error) {
		return s.store.MarkProcessed(ctx, key, ttl)
	})
	if err != nil {
		return false, unavailable(err)
	}
	return v.(bool), nil
}

// IsProcessed implements shared.IdempotencyStore
func (s *BreakerIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	v, err := s.breaker.Execute(func() (any, error) {
		return s.store.IsProcessed(ctx, key)
	})
	if err != nil {
		return false, unavailable(err)
	}
	return v.(bool), nil
}

// Release implements shared.IdempotencyStore
func (s *BreakerIdempotencyStore) Release(ctx context.Context, key string) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.store.Release(ctx, key)
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Close closes the wrapped store
func (s *BreakerIdempotencyStore) Close() error {
	return s.store.Close()
}

// State reports the breaker state: closed, open or half-open
func (s *BreakerIdempotencyStore) State() string {
	return s.breaker.State().String()
}

func unavailable(err error) error {
	return fmt.Errorf("idempotency store unavailable: %w", err)
}
