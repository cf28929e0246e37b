package usecase

import (
	"context"
	"time"
)

// Cache is the read-through slice of the redis adapter usecases consume.
// A nil Cache disables caching without branching at call sites.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}
