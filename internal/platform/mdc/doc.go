// Package mdc implements a mapped diagnostic context: a mutable string
// key/value store scoped to one logical unit of work (an HTTP request, a
// pooled worker task) and attached to log output by the logging layer.
//
// A store is bound to a context.Context with NewContext. Code running in
// the same synchronous call chain reads and writes it directly through
// Put/Get/Remove - no copying is involved. Work handed to a separately
// scheduled executor does NOT inherit the store automatically; it must be
// wrapped with Wrap or WrapResult, which capture a snapshot at call time
// and install it into the destination execution context.
//
// Stores are isolated per unit of work, never shared between concurrently
// running units. Because execution contexts may be pooled and reused,
// every boundary (request middleware, wrapped task) clears its store on
// exit regardless of outcome.
package mdc
