package bgw

import (
	"context"
	"errors"

	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
	"github.com/taurusgroup/multi-party-compute/pkg/math/polynomial"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/protocol"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

type closeProtocol struct {
	s     *Suite
	owner party.ID
	input *field.Element
	out   value.Secret
}

// Close secret shares a value known by owner. Only the owner passes input,
// the other parties pass nil.
func (s *Suite) Close(owner party.ID, input *field.Element) (*schedule.Leaf, value.Secret) {
	out := s.values.NewSecret()
	if owner != s.self {
		input = nil
	}
	return schedule.New(&closeProtocol{s: s, owner: owner, input: input, out: out}), out
}

func (p *closeProtocol) Name() string        { return "bgw/close" }
func (p *closeProtocol) Inputs() []value.ID  { return nil }
func (p *closeProtocol) Outputs() []value.ID { return []value.ID{p.out.ID} }

// Evaluate sends f(j) to every party j in round 0, and stores the share from the owner in round 1.
func (p *closeProtocol) Evaluate(_ context.Context, r round.Number, rp *resource.Pool, ch network.Channel) (protocol.Status, error) {
	switch r {
	case 0:
		if !p.s.partyIDs.Contains(p.owner) {
			return protocol.Done, errors.New("bgw: owner is not a party")
		}
		if p.owner == p.s.self {
			if p.input == nil {
				return protocol.Done, errors.New("bgw: owner has no input")
			}
			f := polynomial.New(p.s.field, p.s.threshold, *p.input, rp.Rand())
			for _, j := range p.s.partyIDs {
				if err := ch.Send(j, f.Share(j).Bytes()); err != nil {
					return protocol.Done, err
				}
			}
		}
		ch.Expect(p.owner)
		return protocol.NeedsMoreRounds, nil
	case 1:
		share, err := p.s.receive(ch, p.owner)
		if err != nil {
			return protocol.Done, protocol.Error{Round: r, Protocol: p.Name(), Culprit: p.owner, Err: err}
		}
		return protocol.Done, rp.Values().SetShare(p.out, share)
	}
	return protocol.Done, protocol.Malformed(p.Name(), r)
}

// InputAll has every party close its own input, and returns the shares indexed by owner.
func (s *Suite) InputAll(input field.Element) (schedule.Node, map[party.ID]value.Secret) {
	par := schedule.Par()
	out := make(map[party.ID]value.Secret, len(s.partyIDs))
	for _, j := range s.partyIDs {
		leaf, secret := s.Close(j, &input)
		par.Append(leaf)
		out[j] = secret
	}
	return par, out
}
