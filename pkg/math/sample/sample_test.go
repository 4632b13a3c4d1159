package sample

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
)

func TestElement(t *testing.T) {
	f := field.Default()
	for i := 0; i < 100; i++ {
		x := Element(rand.Reader, f)
		assert.Equal(t, -1, x.Big().Cmp(f.Modulus()))
	}
}

func TestElementSmallField(t *testing.T) {
	f, err := field.New("251")
	require.NoError(t, err)
	seen := map[string]bool{}
	for i := 0; i < 2000; i++ {
		seen[Element(rand.Reader, f).String()] = true
	}
	assert.Greater(t, len(seen), 200)
}

func TestBools(t *testing.T) {
	bits := Bools(rand.Reader, 1000)
	ones := 0
	for _, b := range bits {
		if b {
			ones++
		}
	}
	assert.Len(t, bits, 1000)
	assert.InDelta(t, 500, ones, 150)
}

func TestPRG(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a, err := NewPRG(seed)
	require.NoError(t, err)
	b, err := NewPRG(seed)
	require.NoError(t, err)

	f := field.Default()
	assert.True(t, Element(a, f).Equal(Element(b, f)))

	_, err = NewPRG([]byte{1})
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, assert.AnError }

func TestMaxIterations(t *testing.T) {
	assert.PanicsWithValue(t, ErrMaxIterations, func() { Bool(failingReader{}) })
}
