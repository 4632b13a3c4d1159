package sample

import (
	"fmt"
	"io"

	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
	"golang.org/x/crypto/chacha20"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// Element samples a uniform element of 𝔽ₚ by rejection.
// The bits above p's bit length are cleared before each attempt.
func Element(rand io.Reader, f *field.Field) field.Element {
	buf := make([]byte, f.ByteLen())
	excess := uint(8*len(buf) - f.BitLen())
	mask := byte(0xff >> excess)
	for {
		mustReadBits(rand, buf)
		buf[0] &= mask
		if e, err := f.Decode(buf); err == nil {
			return e
		}
	}
}

// Bool samples a uniform bit.
func Bool(rand io.Reader) bool {
	var buf [1]byte
	mustReadBits(rand, buf[:])
	return buf[0]&1 == 1
}

// Bools samples n uniform bits.
func Bools(rand io.Reader, n int) []bool {
	buf := make([]byte, (n+7)/8)
	mustReadBits(rand, buf)
	out := make([]bool, n)
	for i := range out {
		out[i] = (buf[i/8]>>(i%8))&1 == 1
	}
	return out
}

// PRG is a deterministic stream of bytes expanded from a 32 byte seed with ChaCha20.
// Two PRGs from the same seed produce the same output.
type PRG struct {
	cipher *chacha20.Cipher
}

// NewPRG returns a PRG seeded with seed, which must be 32 bytes.
func NewPRG(seed []byte) (*PRG, error) {
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(seed, nonce)
	if err != nil {
		return nil, fmt.Errorf("sample: prg: %w", err)
	}
	return &PRG{cipher: c}, nil
}

// Read implements io.Reader. It never fails.
func (p *PRG) Read(b []byte) (int, error) {
	for i := range b {
		b[i] = 0
	}
	p.cipher.XORKeyStream(b, b)
	return len(b), nil
}
