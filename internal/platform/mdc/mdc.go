package mdc

import (
	"context"
	"sync"
)

// Well-known keys installed by the request boundary middleware.
const (
	// KeyRequestID identifies one inbound request across all its log lines.
	KeyRequestID = "requestId"

	// KeyUserID identifies the caller, "anonymous" when unauthenticated.
	KeyUserID = "userId"
)

type ctxKey struct{}

// store is the mutable cell bound to one execution context. Access is
// synchronized because the logging handler may read concurrently with
// writes from the owning goroutine.
type store struct {
	mu sync.RWMutex
	kv map[string]string
}

// NewContext binds a fresh, empty diagnostic context store to ctx.
// Each logical unit of work gets its own store.
func NewContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, &store{kv: make(map[string]string)})
}

// fromContext returns the bound store, or nil when ctx carries none.
func fromContext(ctx context.Context) *store {
	if ctx == nil {
		return nil
	}

	s, _ := ctx.Value(ctxKey{}).(*store)

	return s
}

// Bound reports whether ctx carries a diagnostic context store.
func Bound(ctx context.Context) bool {
	return fromContext(ctx) != nil
}

// Put inserts or overwrites a key. It is a no-op when ctx carries no store.
func Put(ctx context.Context, key, value string) {
	s := fromContext(ctx)
	if s == nil {
		return
	}

	s.mu.Lock()
	s.kv[key] = value
	s.mu.Unlock()
}

// Get returns the value for key and whether it was present. Presence with
// an empty value is distinct from absence. Never blocks, never fails.
func Get(ctx context.Context, key string) (string, bool) {
	s := fromContext(ctx)
	if s == nil {
		return "", false
	}

	s.mu.RLock()
	value, ok := s.kv[key]
	s.mu.RUnlock()

	return value, ok
}

// Remove deletes a key. No-op when the key or the store is absent.
func Remove(ctx context.Context, key string) {
	s := fromContext(ctx)
	if s == nil {
		return
	}

	s.mu.Lock()
	delete(s.kv, key)
	s.mu.Unlock()
}

// Clear removes all keys. Safe to call when the store is already empty
// or when ctx carries no store at all.
func Clear(ctx context.Context) {
	s := fromContext(ctx)
	if s == nil {
		return
	}

	s.mu.Lock()
	clear(s.kv)
	s.mu.Unlock()
}

// Snapshot is an immutable point-in-time copy of a store's contents.
// A nil or empty Snapshot is "absent": there was nothing to capture.
type Snapshot map[string]string

// Absent reports whether the snapshot captured no keys.
func (s Snapshot) Absent() bool {
	return len(s) == 0
}

// Capture copies the current store's contents. Returns an absent snapshot
// when no keys are set or no store is bound. The copy is independent of
// the live store; later mutations do not affect it.
func Capture(ctx context.Context) Snapshot {
	s := fromContext(ctx)
	if s == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.kv) == 0 {
		return nil
	}

	snap := make(Snapshot, len(s.kv))
	for k, v := range s.kv {
		snap[k] = v
	}

	return snap
}

// Install replaces the entire store contents with the snapshot's.
// An absent snapshot clears the store, so a reused execution context
// never keeps data from earlier work. No-op when ctx carries no store.
func Install(ctx context.Context, snap Snapshot) {
	s := fromContext(ctx)
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.kv)
	for k, v := range snap {
		s.kv[k] = v
	}
}
