// Package curve wraps the secp256k1 group operations needed by oblivious transfer.
package curve

import (
	"errors"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// PointSize is the length of a compressed point.
const PointSize = 33

// Scalar is an integer modulo the group order.
type Scalar struct {
	value secp256k1.ModNScalar
}

// Point is an element of the secp256k1 group.
type Point struct {
	value secp256k1.JacobianPoint
}

// RandomScalar samples a non-zero scalar.
func RandomScalar(rand io.Reader) (*Scalar, error) {
	var buf [32]byte
	for i := 0; i < 255; i++ {
		if _, err := io.ReadFull(rand, buf[:]); err != nil {
			return nil, fmt.Errorf("curve: %w", err)
		}
		var s Scalar
		if overflow := s.value.SetByteSlice(buf[:]); !overflow && !s.value.IsZero() {
			return &s, nil
		}
	}
	return nil, errors.New("curve: failed to sample scalar")
}

// ActOnBase returns s⋅G.
func (s *Scalar) ActOnBase() *Point {
	out := new(Point)
	secp256k1.ScalarBaseMultNonConst(&s.value, &out.value)
	return out
}

// Act returns s⋅P.
func (s *Scalar) Act(p *Point) *Point {
	out := new(Point)
	secp256k1.ScalarMultNonConst(&s.value, &p.value, &out.value)
	return out
}

// Add returns p + q.
func (p *Point) Add(q *Point) *Point {
	out := new(Point)
	secp256k1.AddNonConst(&p.value, &q.value, &out.value)
	return out
}

// Negate returns -p.
func (p *Point) Negate() *Point {
	out := new(Point)
	out.value.Set(&p.value)
	out.value.ToAffine()
	out.value.Y.Negate(1)
	out.value.Y.Normalize()
	return out
}

// IsIdentity returns true for the point at infinity.
func (p *Point) IsIdentity() bool {
	return (p.value.X.IsZero() && p.value.Y.IsZero()) || p.value.Z.IsZero()
}

// Equal returns true if p = q.
func (p *Point) Equal(q *Point) bool {
	a, b := *p, *q
	a.value.ToAffine()
	b.value.ToAffine()
	return a.value.X.Equals(&b.value.X) && a.value.Y.Equals(&b.value.Y)
}

// MarshalBinary returns the compressed encoding of p.
func (p *Point) MarshalBinary() ([]byte, error) {
	if p.IsIdentity() {
		return nil, errors.New("curve: cannot encode identity")
	}
	a := *p
	a.value.ToAffine()
	out := make([]byte, PointSize)
	out[0] = byte(a.value.Y.IsOddBit()) + 2
	x := a.value.X.Bytes()
	copy(out[1:], x[:])
	return out, nil
}

// UnmarshalBinary decodes a compressed point.
func (p *Point) UnmarshalBinary(data []byte) error {
	if len(data) != PointSize {
		return fmt.Errorf("curve: invalid point length %d", len(data))
	}
	if data[0] != 2 && data[0] != 3 {
		return fmt.Errorf("curve: invalid point prefix %x", data[0])
	}
	p.value.Z.SetInt(1)
	if p.value.X.SetByteSlice(data[1:]) {
		return errors.New("curve: x coordinate out of range")
	}
	if !secp256k1.DecompressY(&p.value.X, data[0] == 3, &p.value.Y) {
		return errors.New("curve: x coordinate not on curve")
	}
	return nil
}
