package curve

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointMarshal(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	p := s.ActOnBase()

	data, err := p.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, PointSize)

	var q Point
	require.NoError(t, q.UnmarshalBinary(data))
	assert.True(t, p.Equal(&q))

	assert.Error(t, q.UnmarshalBinary(data[:10]))
	data[0] = 7
	assert.Error(t, q.UnmarshalBinary(data))
}

func TestDiffieHellman(t *testing.T) {
	x, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	y, err := RandomScalar(rand.Reader)
	require.NoError(t, err)

	assert.True(t, x.Act(y.ActOnBase()).Equal(y.Act(x.ActOnBase())))
}

func TestNegate(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	p := s.ActOnBase()
	q := p.Add(s.ActOnBase())
	assert.True(t, q.Add(p.Negate()).Equal(p))
	assert.True(t, p.Add(p.Negate()).IsIdentity())
}
