package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sulavkarki/medpasal-backend/pkg/redis"
)

// IdempotencyGuard deduplicates gateway callbacks by transaction reference.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark returns true when the reference was already processed.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, transactionRef string) (bool, error) {
	if transactionRef == "" {
		return false, errors.New("transaction reference is required")
	}
	key := g.store.IdempotencyKey(g.scope, transactionRef)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete releases the mark so a failed settlement can be retried.
func (g *IdempotencyGuard) Delete(ctx context.Context, transactionRef string) error {
	if transactionRef == "" {
		return errors.New("transaction reference is required")
	}
	key := g.store.IdempotencyKey(g.scope, transactionRef)
	return g.store.Del(ctx, key)
}
