// Package field implements arithmetic modulo a public prime p.
package field

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
)

// ErrNotInvertible is returned when inverting zero.
var ErrNotInvertible = errors.New("field: element is not invertible")

// Field is the prime field 𝔽ₚ.
type Field struct {
	p     *saferith.Modulus
	big   *big.Int
	bytes int
}

// DefaultModulus is the Mersenne prime 2⁸⁹ - 1.
const DefaultModulus = "618970019642690137449562111"

// New returns the field defined by the decimal prime p.
func New(p string) (*Field, error) {
	n, ok := new(big.Int).SetString(p, 10)
	if !ok {
		return nil, fmt.Errorf("field: invalid modulus %q", p)
	}
	return FromBig(n)
}

// FromBig returns the field of integers modulo p.
// p is checked for primality.
func FromBig(p *big.Int) (*Field, error) {
	if p.Sign() <= 0 || p.Cmp(big.NewInt(2)) < 0 {
		return nil, fmt.Errorf("field: modulus %v must be at least 2", p)
	}
	if !p.ProbablyPrime(20) {
		return nil, fmt.Errorf("field: modulus %v is not prime", p)
	}
	n := new(saferith.Nat).SetBig(p, p.BitLen())
	return &Field{
		p:     saferith.ModulusFromNat(n),
		big:   new(big.Int).Set(p),
		bytes: (p.BitLen() + 7) / 8,
	}, nil
}

// Default returns 𝔽ₚ for p = 2⁸⁹ - 1.
func Default() *Field {
	f, err := New(DefaultModulus)
	if err != nil {
		panic(err)
	}
	return f
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int { return new(big.Int).Set(f.big) }

// BitLen returns the bit length of p.
func (f *Field) BitLen() int { return f.p.BitLen() }

// ByteLen returns the length of the encoding of an element.
func (f *Field) ByteLen() int { return f.bytes }

// Equal returns true if both fields have the same modulus.
func (f *Field) Equal(other *Field) bool {
	return f == other || f.big.Cmp(other.big) == 0
}

func (f *Field) String() string { return f.big.String() }

func (f *Field) reduce(n *saferith.Nat) Element {
	return Element{f: f, n: new(saferith.Nat).Mod(n, f.p)}
}

// Zero returns 0.
func (f *Field) Zero() Element { return f.FromUint64(0) }

// One returns 1.
func (f *Field) One() Element { return f.FromUint64(1) }

// FromUint64 returns x mod p.
func (f *Field) FromUint64(x uint64) Element {
	return f.reduce(new(saferith.Nat).SetUint64(x))
}

// FromInt64 returns x mod p, mapping negative values to p - |x|.
func (f *Field) FromInt64(x int64) Element {
	return f.FromBig(big.NewInt(x))
}

// FromBig returns x mod p.
func (f *Field) FromBig(x *big.Int) Element {
	v := new(big.Int).Mod(x, f.big)
	return f.reduce(new(saferith.Nat).SetBig(v, f.p.BitLen()))
}

// Decode reads a big-endian encoding of length ByteLen.
// Values not in [0, p) are rejected.
func (f *Field) Decode(b []byte) (Element, error) {
	if len(b) != f.bytes {
		return Element{}, fmt.Errorf("field: invalid encoding length %d, expected %d", len(b), f.bytes)
	}
	n := new(saferith.Nat).SetBytes(b)
	if _, _, lt := n.CmpMod(f.p); lt != 1 {
		return Element{}, errors.New("field: encoding not reduced")
	}
	return f.reduce(n), nil
}

// Element is a value in 𝔽ₚ. Elements are immutable; every operation returns a new one.
type Element struct {
	f *Field
	n *saferith.Nat
}

// Field returns the field e belongs to.
func (e Element) Field() *Field { return e.f }

// Add returns e + o.
func (e Element) Add(o Element) Element {
	return Element{f: e.f, n: new(saferith.Nat).ModAdd(e.n, o.n, e.f.p)}
}

// Sub returns e - o.
func (e Element) Sub(o Element) Element {
	return Element{f: e.f, n: new(saferith.Nat).ModSub(e.n, o.n, e.f.p)}
}

// Mul returns e • o.
func (e Element) Mul(o Element) Element {
	return Element{f: e.f, n: new(saferith.Nat).ModMul(e.n, o.n, e.f.p)}
}

// Neg returns -e.
func (e Element) Neg() Element {
	return Element{f: e.f, n: new(saferith.Nat).ModNeg(e.n, e.f.p)}
}

// Inv returns e⁻¹, or ErrNotInvertible if e = 0.
func (e Element) Inv() (Element, error) {
	if e.IsZero() {
		return Element{}, ErrNotInvertible
	}
	return Element{f: e.f, n: new(saferith.Nat).ModInverse(e.n, e.f.p)}, nil
}

// Equal returns true if e = o.
func (e Element) Equal(o Element) bool {
	return e.n.Eq(o.n) == 1
}

// IsZero returns true if e = 0.
func (e Element) IsZero() bool {
	return e.n.EqZero() == 1
}

// Big returns e as an integer in [0, p).
func (e Element) Big() *big.Int { return e.n.Big() }

// Bytes returns the fixed length big-endian encoding of e.
func (e Element) Bytes() []byte {
	return e.n.Big().FillBytes(make([]byte, e.f.bytes))
}

func (e Element) String() string {
	if e.n == nil {
		return "<nil>"
	}
	return e.n.Big().String()
}
