// Package reqid tags a context with the id of a single query execution.
package reqid

import (
	"context"
	"math/rand/v2"
)

type key struct{}

// NewContext returns parent carrying a fresh random execution id, and the id.
func NewContext(parent context.Context) (context.Context, uint64) {
	id := rand.Uint64()
	return context.WithValue(parent, key{}, id), id
}

// FromContext returns the id stored by NewContext.
func FromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(key{}).(uint64)
	return id, ok
}
