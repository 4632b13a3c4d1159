package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	f, err := New(DefaultModulus)
	require.NoError(t, err)
	assert.Equal(t, 89, f.BitLen())
	assert.Equal(t, 12, f.ByteLen())

	_, err = New("12")
	assert.Error(t, err, "composite modulus")
	_, err = New("abc")
	assert.Error(t, err)
	_, err = New("1")
	assert.Error(t, err)
}

func TestArithmetic(t *testing.T) {
	f := Default()
	a := f.FromUint64(10)
	b := f.FromUint64(4)

	assert.True(t, a.Add(b).Equal(f.FromUint64(14)))
	assert.True(t, a.Sub(b).Equal(f.FromUint64(6)))
	assert.True(t, b.Sub(a).Equal(f.FromInt64(-6)))
	assert.True(t, a.Mul(b).Equal(f.FromUint64(40)))
	assert.True(t, a.Neg().Add(a).IsZero())

	inv, err := b.Inv()
	require.NoError(t, err)
	assert.True(t, inv.Mul(b).Equal(f.One()))

	_, err = f.Zero().Inv()
	assert.ErrorIs(t, err, ErrNotInvertible)
}

func TestWrapAround(t *testing.T) {
	f := Default()
	pMinusOne := f.FromBig(new(big.Int).Sub(f.Modulus(), big.NewInt(1)))
	assert.True(t, pMinusOne.Add(f.One()).IsZero())
	assert.True(t, f.FromBig(f.Modulus()).IsZero())
}

func TestDecode(t *testing.T) {
	f := Default()
	x := f.FromUint64(123456789)
	y, err := f.Decode(x.Bytes())
	require.NoError(t, err)
	assert.True(t, x.Equal(y))

	_, err = f.Decode([]byte{1, 2})
	assert.Error(t, err)

	tooBig := f.Modulus().FillBytes(make([]byte, f.ByteLen()))
	_, err = f.Decode(tooBig)
	assert.Error(t, err)
}
