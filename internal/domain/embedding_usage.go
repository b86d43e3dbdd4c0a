package domain

import (
	"context"
	"sync/atomic"
)

type usageKey struct{}

// EmbeddingUsage counts provider tokens spent on behalf of one request.
// A nil *EmbeddingUsage is valid and records nothing.
type EmbeddingUsage struct {
	tokens atomic.Int64
	used   atomic.Bool
}

// NewContextWithUsage attaches a fresh counter to ctx.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := new(EmbeddingUsage)
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext returns the counter attached to ctx, or nil.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(usageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records n tokens and marks the request as having embedded text.
// Cache hits call it with n == 0.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.used.Store(true)
	u.tokens.Add(int64(n))
}

// Tokens returns the running total.
func (u *EmbeddingUsage) Tokens() int {
	if u == nil {
		return 0
	}
	return int(u.tokens.Load())
}

// Used reports whether any embedding ran for the request.
func (u *EmbeddingUsage) Used() bool {
	return u != nil && u.used.Load()
}
