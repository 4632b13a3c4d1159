package bgw

import (
	"context"
	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/protocol"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// local is a single round protocol computing its output from local values only.
type local struct {
	name    string
	inputs  []value.ID
	out     value.ID
	compute func() (field.Element, error)
	set     func(values *value.Arena, e field.Element) error
}

func (p *local) Name() string        { return p.name }
func (p *local) Inputs() []value.ID  { return p.inputs }
func (p *local) Outputs() []value.ID { return []value.ID{p.out} }

func (p *local) Evaluate(_ context.Context, r round.Number, rp *resource.Pool, _ network.Channel) (protocol.Status, error) {
	if r != 0 {
		return protocol.Done, protocol.Malformed(p.name, r)
	}
	e, err := p.compute()
	if err != nil {
		return protocol.Done, err
	}
	return protocol.Done, p.set(rp.Values(), e)
}

func (s *Suite) localSecret(name string, inputs []value.ID, compute func() (field.Element, error)) (*schedule.Leaf, value.Secret) {
	out := s.values.NewSecret()
	return schedule.New(&local{
		name:    name,
		inputs:  inputs,
		out:     out.ID,
		compute: compute,
		set:     func(a *value.Arena, e field.Element) error { return a.SetShare(out, e) },
	}), out
}

func (s *Suite) localPublic(name string, inputs []value.ID, compute func() (field.Element, error)) (*schedule.Leaf, value.Public) {
	out := s.values.NewPublic()
	return schedule.New(&local{
		name:    name,
		inputs:  inputs,
		out:     out.ID,
		compute: compute,
		set:     func(a *value.Arena, e field.Element) error { return a.SetPublic(out, e) },
	}), out
}

// Add returns shares of x + y.
func (s *Suite) Add(x, y value.Secret) (*schedule.Leaf, value.Secret) {
	return s.localSecret("bgw/add", []value.ID{x.ID, y.ID}, func() (field.Element, error) {
		a, b, err := s.shares(x, y)
		if err != nil {
			return field.Element{}, err
		}
		return a.Add(b), nil
	})
}

// Sub returns shares of x - y.
func (s *Suite) Sub(x, y value.Secret) (*schedule.Leaf, value.Secret) {
	return s.localSecret("bgw/sub", []value.ID{x.ID, y.ID}, func() (field.Element, error) {
		a, b, err := s.shares(x, y)
		if err != nil {
			return field.Element{}, err
		}
		return a.Sub(b), nil
	})
}

// AddPublic returns shares of x + c. Every party adds c to its share, which
// shifts the constant term of the sharing polynomial.
func (s *Suite) AddPublic(x value.Secret, c value.Public) (*schedule.Leaf, value.Secret) {
	return s.localSecret("bgw/add-public", []value.ID{x.ID, c.ID}, func() (field.Element, error) {
		a, err := s.share(x)
		if err != nil {
			return field.Element{}, err
		}
		k, err := s.public(c)
		if err != nil {
			return field.Element{}, err
		}
		return a.Add(k), nil
	})
}

// MultPublic returns shares of c·x.
func (s *Suite) MultPublic(x value.Secret, c value.Public) (*schedule.Leaf, value.Secret) {
	return s.localSecret("bgw/mult-public", []value.ID{x.ID, c.ID}, func() (field.Element, error) {
		a, err := s.share(x)
		if err != nil {
			return field.Element{}, err
		}
		k, err := s.public(c)
		if err != nil {
			return field.Element{}, err
		}
		return a.Mul(k), nil
	})
}

// Neg returns shares of -x.
func (s *Suite) Neg(x value.Secret) (*schedule.Leaf, value.Secret) {
	return s.localSecret("bgw/neg", []value.ID{x.ID}, func() (field.Element, error) {
		a, err := s.share(x)
		if err != nil {
			return field.Element{}, err
		}
		return a.Neg(), nil
	})
}

// Copy returns a new handle holding the same share as x.
func (s *Suite) Copy(x value.Secret) (*schedule.Leaf, value.Secret) {
	return s.localSecret("bgw/copy", []value.ID{x.ID}, func() (field.Element, error) {
		return s.share(x)
	})
}

// Zero returns the trivial sharing of 0, where every share is 0.
func (s *Suite) Zero() (*schedule.Leaf, value.Secret) {
	return s.localSecret("bgw/zero", nil, func() (field.Element, error) {
		return s.field.Zero(), nil
	})
}

// LocalInvert returns the inverse of the public value x. It fails with
// field.ErrNotInvertible when x is 0.
func (s *Suite) LocalInvert(x value.Public) (*schedule.Leaf, value.Public) {
	return s.localPublic("bgw/invert", []value.ID{x.ID}, func() (field.Element, error) {
		a, err := s.public(x)
		if err != nil {
			return field.Element{}, err
		}
		return a.Inv()
	})
}

func (s *Suite) shares(x, y value.Secret) (field.Element, field.Element, error) {
	a, err := s.share(x)
	if err != nil {
		return field.Element{}, field.Element{}, err
	}
	b, err := s.share(y)
	if err != nil {
		return field.Element{}, field.Element{}, err
	}
	return a, b, nil
}
