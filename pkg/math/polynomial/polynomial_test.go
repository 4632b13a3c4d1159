package polynomial

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
	"github.com/taurusgroup/multi-party-compute/pkg/math/sample"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

func TestPolynomial_Constant(t *testing.T) {
	f := field.Default()
	secret := sample.Element(rand.Reader, f)
	poly := New(f, 10, secret, rand.Reader)
	require.True(t, poly.Constant().Equal(secret))
	require.Equal(t, 10, poly.Degree())
}

func TestPolynomial_Evaluate(t *testing.T) {
	f := field.Default()
	polynomial := &Polynomial{[]field.Element{f.One(), f.Zero(), f.One()}}

	for index := 0; index < 100; index++ {
		x := mrand.Uint32() + 1
		result := big.NewInt(int64(x))
		result.Mul(result, result)
		result.Add(result, big.NewInt(1))
		computed := polynomial.Evaluate(f.FromUint64(uint64(x)))
		assert.True(t, f.FromBig(result).Equal(computed))
	}

	assert.Panics(t, func() { polynomial.Evaluate(f.Zero()) })
}

func TestLagrange(t *testing.T) {
	f := field.Default()
	domain := party.Range(5)
	coefficients := Lagrange(f, domain)
	sum := f.Zero()
	for _, c := range coefficients {
		sum = sum.Add(c)
	}
	assert.True(t, sum.Equal(f.One()), "coefficients at 0 of a constant polynomial sum to 1")

	// cached copy must not alias
	coefficients[1] = f.Zero()
	again := Lagrange(f, domain)
	assert.False(t, again[1].IsZero())
}

func TestInterpolate(t *testing.T) {
	f := field.Default()
	secret := sample.Element(rand.Reader, f)
	threshold := 2
	poly := New(f, threshold, secret, rand.Reader)

	shares := map[party.ID]field.Element{}
	for _, id := range party.Range(6) {
		shares[id] = poly.Share(id)
	}
	assert.True(t, Interpolate(f, shares).Equal(secret))

	enough := map[party.ID]field.Element{2: shares[2], 4: shares[4], 5: shares[5]}
	assert.True(t, Interpolate(f, enough).Equal(secret))

	tooFew := map[party.ID]field.Element{2: shares[2], 4: shares[4]}
	assert.False(t, Interpolate(f, tooFew).Equal(secret))
}
