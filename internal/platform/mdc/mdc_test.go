package mdc

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())

	Put(ctx, "requestId", "abc123")

	value, ok := Get(ctx, "requestId")
	assert.True(t, ok)
	assert.Equal(t, "abc123", value)
}

func TestPut_Overwrites(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())

	Put(ctx, "key", "first")
	Put(ctx, "key", "second")

	value, ok := Get(ctx, "key")
	assert.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestGet_EmptyValueIsPresent(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())

	Put(ctx, "key", "")

	value, ok := Get(ctx, "key")
	assert.True(t, ok, "presence with empty value must be distinct from absence")
	assert.Empty(t, value)
}

func TestGet_AbsentKey(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())

	value, ok := Get(ctx, "missing")
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())

	Put(ctx, "key", "value")
	Remove(ctx, "key")

	_, ok := Get(ctx, "key")
	assert.False(t, ok)

	// Removing an absent key is a no-op.
	Remove(ctx, "key")
	Remove(ctx, "never-set")
}

func TestClear(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())

	Put(ctx, "a", "1")
	Put(ctx, "b", "2")
	Clear(ctx)

	_, okA := Get(ctx, "a")
	_, okB := Get(ctx, "b")
	assert.False(t, okA)
	assert.False(t, okB)

	// Clearing an empty store is safe.
	Clear(ctx)
}

func TestUnboundContext_AllOpsAreSafe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	assert.False(t, Bound(ctx))

	Put(ctx, "key", "value")
	Remove(ctx, "key")
	Clear(ctx)
	Install(ctx, Snapshot{"key": "value"})

	value, ok := Get(ctx, "key")
	assert.False(t, ok)
	assert.Empty(t, value)
	assert.True(t, Capture(ctx).Absent())
}

func TestCapture(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		populate map[string]string
		want     Snapshot
	}{
		{
			name:     "absent when store is empty",
			populate: nil,
			want:     nil,
		},
		{
			name:     "copies all keys",
			populate: map[string]string{"requestId": "r1", "userId": "u1"},
			want:     Snapshot{"requestId": "r1", "userId": "u1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := NewContext(context.Background())
			for k, v := range tt.populate {
				Put(ctx, k, v)
			}

			snap := Capture(ctx)
			assert.Equal(t, tt.want, snap)
			assert.Equal(t, len(tt.want) == 0, snap.Absent())
		})
	}
}

func TestCapture_IsIndependentOfLiveStore(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())
	Put(ctx, "requestId", "r1")

	snap := Capture(ctx)

	Put(ctx, "requestId", "changed")
	Put(ctx, "extra", "later")

	assert.Equal(t, Snapshot{"requestId": "r1"}, snap)
}

func TestInstall_ReplacesEntireStore(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())
	Put(ctx, "stale", "leftover")

	Install(ctx, Snapshot{"requestId": "r2"})

	_, ok := Get(ctx, "stale")
	assert.False(t, ok, "install must replace, not merge")

	value, ok := Get(ctx, "requestId")
	require.True(t, ok)
	assert.Equal(t, "r2", value)
}

func TestInstall_AbsentSnapshotClears(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())
	Put(ctx, "stale", "leftover")

	Install(ctx, nil)

	_, ok := Get(ctx, "stale")
	assert.False(t, ok)
}

func TestIsolation_ConcurrentContexts(t *testing.T) {
	t.Parallel()

	const iterations = 200

	ctxA := NewContext(context.Background())
	ctxB := NewContext(context.Background())

	var wg sync.WaitGroup

	wg.Go(func() {
		for range iterations {
			Put(ctxA, "owner", "a")

			value, ok := Get(ctxA, "owner")
			assert.True(t, ok)
			assert.Equal(t, "a", value)
		}
	})

	wg.Go(func() {
		for range iterations {
			Put(ctxB, "owner", "b")

			value, ok := Get(ctxB, "owner")
			assert.True(t, ok)
			assert.Equal(t, "b", value)
		}
	})

	wg.Wait()
}

func TestDerivedContextSharesStore(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())
	Put(ctx, "requestId", "r1")

	// A derived context (same synchronous call chain) sees the same store.
	derived := context.WithValue(ctx, struct{ k string }{"other"}, "x")

	value, ok := Get(derived, "requestId")
	assert.True(t, ok)
	assert.Equal(t, "r1", value)

	Put(derived, "added", "below")

	value, ok = Get(ctx, "added")
	assert.True(t, ok)
	assert.Equal(t, "below", value)
}
