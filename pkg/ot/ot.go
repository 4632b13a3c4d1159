// Package ot implements 1-out-of-2 oblivious transfer of single bits.
//
// The sender holds pairs of bits, the receiver holds one selection bit per
// pair and learns the selected bit of each pair. The sender learns nothing
// about the selections and the receiver nothing about the other bits.
package ot

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned for encodings or messages that cannot be decoded.
	ErrMalformed = errors.New("ot: malformed")
	// ErrTransport is returned when the connection to the peer fails.
	ErrTransport = errors.New("ot: transport failed")
)

// Pair holds the two bits offered by the sender for one transfer.
type Pair struct {
	Zero, One bool
}

// Select returns the bit chosen by sigma.
func (p Pair) Select(sigma bool) bool {
	if sigma {
		return p.One
	}
	return p.Zero
}

// Sender offers pairs of bits.
type Sender interface {
	Send(ctx context.Context, pairs []Pair) error
}

// Receiver obtains one bit of each pair, in the order of sigmas.
type Receiver interface {
	Receive(ctx context.Context, sigmas []bool) ([]bool, error)
}

// EncodeBools encodes each bit as one byte, 0x00 or 0x01.
func EncodeBools(bits []bool) []byte {
	out := make([]byte, len(bits))
	for i, b := range bits {
		if b {
			out[i] = 1
		}
	}
	return out
}

// DecodeBools reverses EncodeBools. Bytes other than 0x00 and 0x01 are
// rejected with ErrMalformed.
func DecodeBools(data []byte) ([]bool, error) {
	out := make([]bool, len(data))
	for i, b := range data {
		switch b {
		case 0:
		case 1:
			out[i] = true
		default:
			return nil, fmt.Errorf("%w: byte %d is %#x", ErrMalformed, i, b)
		}
	}
	return out, nil
}

// Pairs zips two bit vectors of equal length.
func Pairs(zero, one []bool) ([]Pair, error) {
	if len(zero) != len(one) {
		return nil, fmt.Errorf("ot: %d zero bits for %d one bits", len(zero), len(one))
	}
	out := make([]Pair, len(zero))
	for i := range zero {
		out[i] = Pair{Zero: zero[i], One: one[i]}
	}
	return out, nil
}
