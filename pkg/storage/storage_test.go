package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/internal/log/testlogger"
)

type entry struct {
	Table [4]bool
	Mask  bool
}

func stores(t *testing.T) map[string]Store {
	b, err := OpenBolt(context.Background(), testlogger.New(t), t.TempDir())
	require.NoError(t, err)
	return map[string]Store{"memory": NewMemory(), "bolt": b}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer func() { assert.NoError(t, s.Close()) }()

			in := entry{Table: [4]bool{true, false, false, true}, Mask: true}
			require.NoError(t, s.Put(ctx, "tables", 300, in))
			require.NoError(t, s.Put(ctx, "tables", 2, entry{}))
			require.NoError(t, s.Put(ctx, "tables", 1<<40, entry{}))
			require.NoError(t, s.Put(ctx, "other", 300, entry{}))

			assert.ErrorIs(t, s.Put(ctx, "tables", 300, entry{}), ErrExists)

			var out entry
			require.NoError(t, s.Get(ctx, "tables", 300, &out))
			assert.Equal(t, in, out)

			assert.ErrorIs(t, s.Get(ctx, "tables", 301, &out), ErrNotFound)
			assert.ErrorIs(t, s.Get(ctx, "missing", 1, &out), ErrNotFound)

			keys, err := s.Keys(ctx, "tables")
			require.NoError(t, err)
			assert.Equal(t, []uint64{2, 300, 1 << 40}, keys)

			keys, err = s.Keys(ctx, "missing")
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestStore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemory()
	assert.ErrorIs(t, s.Put(ctx, "a", 1, 1), context.Canceled)
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Put(context.Background(), "a", 1, 1), ErrClosed)
}
