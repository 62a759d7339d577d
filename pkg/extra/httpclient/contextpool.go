package httpclient

import "context"

// The original client.py keeps its ConnectionPool stack in a contextvars.ContextVar
// (ConnectionPool.All), so a pool pushed by an outer asyncio task is visible to
// whatever it calls without being passed explicitly, and pops back off when that
// scope exits. Go has no ContextVar; context.Context carrying the pool as a value
// is the idiomatic equivalent, and is what this file wires up.

type poolContextKey struct{}

// WithPool returns a derived context carrying pool as the active connection
// pool for anything downstream that calls FromContext. It does not replace
// a pool already present further up the chain; it shadows it for this
// subtree, same as the original's Push/Pop stack.
func WithPool(ctx context.Context, pool *ConnectionPool) context.Context {
	return context.WithValue(ctx, poolContextKey{}, pool)
}

// FromContext returns the connection pool pushed by the nearest enclosing
// WithPool call, or ok=false if none is present.
func FromContext(ctx context.Context) (pool *ConnectionPool, ok bool) {
	pool, ok = ctx.Value(poolContextKey{}).(*ConnectionPool)
	return pool, ok
}

// PoolOrDefault returns the context-scoped pool if one was pushed with
// WithPool, otherwise lazily creates (and pushes, via the returned context)
// a pool built from config. Mirrors ConnectionPool.Get() in client.py, which
// falls back to creating a fresh pool when the ContextVar stack is empty.
func PoolOrDefault(ctx context.Context, config *PoolConfig) (*ConnectionPool, context.Context) {
	if pool, ok := FromContext(ctx); ok {
		return pool, ctx
	}
	pool := NewConnectionPool(config)
	return pool, WithPool(ctx, pool)
}
