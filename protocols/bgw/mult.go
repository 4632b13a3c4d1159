package bgw

import (
	"context"
	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/math/polynomial"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/protocol"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

type multProtocol struct {
	s    *Suite
	x, y value.Secret
	out  value.Secret
}

// Mult returns shares of x·y.
//
// The product of two shares lies on a polynomial of degree 2t. Each party
// reshares its product with a fresh polynomial of degree t, and combines
// the shares it receives with the Lagrange coefficients of all parties.
func (s *Suite) Mult(x, y value.Secret) (*schedule.Leaf, value.Secret) {
	out := s.values.NewSecret()
	return schedule.New(&multProtocol{s: s, x: x, y: y, out: out}), out
}

func (p *multProtocol) Name() string        { return "bgw/mult" }
func (p *multProtocol) Inputs() []value.ID  { return []value.ID{p.x.ID, p.y.ID} }
func (p *multProtocol) Outputs() []value.ID { return []value.ID{p.out.ID} }

func (p *multProtocol) Evaluate(_ context.Context, r round.Number, rp *resource.Pool, ch network.Channel) (protocol.Status, error) {
	switch r {
	case 0:
		a, b, err := p.s.shares(p.x, p.y)
		if err != nil {
			return protocol.Done, err
		}
		h := polynomial.New(p.s.field, p.s.threshold, a.Mul(b), rp.Rand())
		for _, j := range p.s.partyIDs {
			if err = ch.Send(j, h.Share(j).Bytes()); err != nil {
				return protocol.Done, err
			}
		}
		ch.ExpectFromAll()
		return protocol.NeedsMoreRounds, nil
	case 1:
		lagrange := polynomial.Lagrange(p.s.field, p.s.partyIDs)
		share := p.s.field.Zero()
		for _, j := range p.s.partyIDs {
			h, err := p.s.receive(ch, j)
			if err != nil {
				return protocol.Done, protocol.Error{Round: r, Protocol: p.Name(), Culprit: j, Err: err}
			}
			share = share.Add(lagrange[j].Mul(h))
		}
		return protocol.Done, rp.Values().SetShare(p.out, share)
	}
	return protocol.Done, protocol.Malformed(p.Name(), r)
}

