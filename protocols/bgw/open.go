package bgw

import (
	"context"
	"errors"

	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/protocol"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// openProtocol reveals a secret to the receivers, from the shares of the senders.
type openProtocol struct {
	s         *Suite
	name      string
	in        value.Secret
	out       value.Public
	senders   party.IDSlice
	receivers party.IDSlice
}

// Open reveals x to every party.
func (s *Suite) Open(x value.Secret) (*schedule.Leaf, value.Public) {
	return s.open("bgw/open", x, s.partyIDs, s.partyIDs)
}

// OpenTo reveals x to target only. The other parties complete without
// setting the output.
func (s *Suite) OpenTo(target party.ID, x value.Secret) (*schedule.Leaf, value.Public) {
	return s.open("bgw/open-to", x, s.partyIDs, party.NewIDSlice([]party.ID{target}))
}

// OpenWith reveals x to every party using only the shares held by subset.
// Fewer than t+1 senders yield a value unrelated to x.
func (s *Suite) OpenWith(subset []party.ID, x value.Secret) (*schedule.Leaf, value.Public) {
	return s.open("bgw/open-with", x, party.NewIDSlice(subset), s.partyIDs)
}

func (s *Suite) open(name string, x value.Secret, senders, receivers party.IDSlice) (*schedule.Leaf, value.Public) {
	out := s.values.NewPublic()
	return schedule.New(&openProtocol{
		s:         s,
		name:      name,
		in:        x,
		out:       out,
		senders:   senders,
		receivers: receivers,
	}), out
}

func (p *openProtocol) Name() string        { return p.name }
func (p *openProtocol) Inputs() []value.ID  { return []value.ID{p.in.ID} }
func (p *openProtocol) Outputs() []value.ID { return []value.ID{p.out.ID} }

func (p *openProtocol) Evaluate(_ context.Context, r round.Number, rp *resource.Pool, ch network.Channel) (protocol.Status, error) {
	self := p.s.self
	switch r {
	case 0:
		if len(p.senders) == 0 {
			return protocol.Done, errors.New("bgw: no party to open from")
		}
		for _, j := range append(p.senders.Copy(), p.receivers...) {
			if !p.s.partyIDs.Contains(j) {
				return protocol.Done, errors.New("bgw: open involves an unknown party")
			}
		}
		if p.senders.Contains(self) {
			share, err := p.s.share(p.in)
			if err != nil {
				return protocol.Done, err
			}
			for _, j := range p.receivers {
				if err = ch.Send(j, share.Bytes()); err != nil {
					return protocol.Done, err
				}
			}
		}
		if p.receivers.Contains(self) {
			for _, j := range p.senders {
				ch.Expect(j)
			}
		}
		return protocol.NeedsMoreRounds, nil
	case 1:
		if !p.receivers.Contains(self) {
			return protocol.Done, nil
		}
		secret, err := p.s.interpolate(ch, p.senders)
		if err != nil {
			return protocol.Done, err
		}
		return protocol.Done, rp.Values().SetPublic(p.out, secret)
	}
	return protocol.Done, protocol.Malformed(p.name, r)
}
