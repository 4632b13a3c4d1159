package value

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
)

func TestArena_WriteOnce(t *testing.T) {
	f := field.Default()
	a := NewArena()
	s := a.NewSecret()

	_, ok := a.Share(s)
	assert.False(t, ok)
	assert.False(t, a.Ready(s.ID))

	require.NoError(t, a.SetShare(s, f.FromUint64(5)))
	assert.True(t, a.Ready(s.ID))
	v, ok := a.Share(s)
	require.True(t, ok)
	assert.True(t, v.Equal(f.FromUint64(5)))

	assert.ErrorIs(t, a.SetShare(s, f.FromUint64(6)), ErrAlreadySet)
	v, _ = a.Share(s)
	assert.True(t, v.Equal(f.FromUint64(5)))
}

func TestArena_Kinds(t *testing.T) {
	f := field.Default()
	a := NewArena()
	s := a.NewSecret()
	assert.ErrorIs(t, a.SetPublic(Public{s.ID}, f.One()), ErrKind)
	_, ok := a.Public(Public{s.ID})
	assert.False(t, ok)

	assert.ErrorIs(t, a.SetSBool(SBool{ID: 40}, true), ErrUnknown)

	b := a.NewSBool()
	require.NoError(t, a.SetSBool(b, true))
	bit, ok := a.SBool(b)
	assert.True(t, ok)
	assert.True(t, bit)
	assert.ErrorIs(t, a.SetShare(Secret{b.ID}, f.One()), ErrKind)

	p := a.Known(f.FromUint64(3))
	assert.True(t, a.Ready(p.ID, b.ID))
	assert.False(t, a.Ready(p.ID, s.ID))
}

func TestArena_Concurrent(t *testing.T) {
	f := field.Default()
	a := NewArena()
	var wg sync.WaitGroup
	ids := make([]Secret, 100)
	for i := range ids {
		ids[i] = a.NewSecret()
	}
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = a.SetShare(ids[i], f.FromUint64(uint64(i)))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, a.Len())
	for i, s := range ids {
		v, ok := a.Share(s)
		require.True(t, ok)
		assert.True(t, v.Equal(f.FromUint64(uint64(i))))
	}
}
