package ot

import (
	"fmt"
	"io"

	"github.com/taurusgroup/multi-party-compute/internal/hash"
	"github.com/taurusgroup/multi-party-compute/pkg/math/curve"
)

// The transfers follow Chou and Orlandi, "The Simplest Protocol for
// Oblivious Transfer". The sender publishes S = y⋅G. For choice σ the
// receiver publishes R = x⋅G + σ⋅S, and derives its key from x⋅S. The
// sender derives the key of bit 0 from y⋅R and the key of bit 1 from
// y⋅R - y⋅S, so only the selected key is known to the receiver.
//
// A batch is one exchange of three messages:
//
//	sender   -> receiver: S, n
//	receiver -> sender:   R_0 || ... || R_{n-1}
//	sender   -> receiver: e_0^0 e_0^1 ... e_{n-1}^0 e_{n-1}^1
//
// where e_i^b is the bit b of pair i masked with the low bit of its key.

// key returns the low bit of the key of transfer i.
func key(s, r []byte, p *curve.Point, i int) (bool, error) {
	pb, err := p.MarshalBinary()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	h := hash.New("ot/co")
	_ = h.WriteAny(s, r, pb, uint64(i))
	return h.Sum()[0]&1 == 1, nil
}

// sendBatch runs the sender side of one batch.
func sendBatch(c *Conn, rand io.Reader, pairs []Pair) error {
	y, err := curve.RandomScalar(rand)
	if err != nil {
		return err
	}
	S := y.ActOnBase()
	negT := y.Act(S).Negate()
	sb, err := S.MarshalBinary()
	if err != nil {
		return err
	}
	if err = c.SendData(sb); err != nil {
		return err
	}
	if err = c.SendUint32(len(pairs)); err != nil {
		return err
	}
	if err = c.Flush(); err != nil {
		return err
	}

	rs, err := c.ReceiveData()
	if err != nil {
		return err
	}
	if len(rs) != len(pairs)*curve.PointSize {
		return fmt.Errorf("%w: %d bytes of receiver points for %d transfers", ErrMalformed, len(rs), len(pairs))
	}
	masked := make([]bool, 2*len(pairs))
	for i, p := range pairs {
		rb := rs[i*curve.PointSize : (i+1)*curve.PointSize]
		var R curve.Point
		if err = R.UnmarshalBinary(rb); err != nil {
			return fmt.Errorf("%w: receiver point %d: %v", ErrMalformed, i, err)
		}
		yR := y.Act(&R)
		k0, err := key(sb, rb, yR, i)
		if err != nil {
			return err
		}
		k1, err := key(sb, rb, yR.Add(negT), i)
		if err != nil {
			return err
		}
		masked[2*i] = k0 != p.Zero
		masked[2*i+1] = k1 != p.One
	}
	if err = c.SendData(EncodeBools(masked)); err != nil {
		return err
	}
	return c.Flush()
}

// receiveBatch runs the receiver side of one batch.
func receiveBatch(c *Conn, rand io.Reader, sigmas []bool) ([]bool, error) {
	sb, err := c.ReceiveData()
	if err != nil {
		return nil, err
	}
	var S curve.Point
	if err = S.UnmarshalBinary(sb); err != nil {
		return nil, fmt.Errorf("%w: sender point: %v", ErrMalformed, err)
	}
	n, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if n != len(sigmas) {
		return nil, fmt.Errorf("%w: sender offers %d transfers, expected %d", ErrMalformed, n, len(sigmas))
	}

	xs := make([]*curve.Scalar, n)
	rs := make([]byte, 0, n*curve.PointSize)
	for i, sigma := range sigmas {
		if xs[i], err = curve.RandomScalar(rand); err != nil {
			return nil, err
		}
		R := xs[i].ActOnBase()
		if sigma {
			R = R.Add(&S)
		}
		rb, err := R.MarshalBinary()
		if err != nil {
			return nil, err
		}
		rs = append(rs, rb...)
	}
	if err = c.SendData(rs); err != nil {
		return nil, err
	}
	if err = c.Flush(); err != nil {
		return nil, err
	}

	data, err := c.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(data) != 2*n {
		return nil, fmt.Errorf("%w: %d masked bits for %d transfers", ErrMalformed, len(data), n)
	}
	masked, err := DecodeBools(data)
	if err != nil {
		return nil, err
	}
	out := make([]bool, n)
	for i, sigma := range sigmas {
		e := masked[2*i]
		if sigma {
			e = masked[2*i+1]
		}
		k, err := key(sb, rs[i*curve.PointSize:(i+1)*curve.PointSize], xs[i].Act(&S), i)
		if err != nil {
			return nil, err
		}
		out[i] = e != k
	}
	return out, nil
}
