package tinytables

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/math/sample"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/protocol"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// ErrParties is returned when the session is not made of parties 1 and 2.
var ErrParties = errors.New("tinytables: requires exactly parties 1 and 2")

// Suite creates the preprocessing protocols of one party. Both parties must
// build the same circuit, in the same order, so that ids match.
type Suite struct {
	self    party.ID
	peer    party.ID
	values  *value.Arena
	storage *Storage

	mtx   sync.Mutex
	first uint64
	next  uint64
}

// Gate is the output of an AND gate and the id of its preprocessed material.
type Gate struct {
	ID  uint64
	Out value.SBool
}

// Wire is an input wire and the id under which its owner finds the full mask.
type Wire struct {
	ID    uint64
	Owner party.ID
	Mask  value.SBool
}

// New returns a suite storing its material in the store of rp. Ids continue
// after the material already present, so a store can hold several runs.
func New(ctx context.Context, rp *resource.Pool) (*Suite, error) {
	ids := rp.PartyIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		return nil, fmt.Errorf("%w: got %v", ErrParties, ids)
	}
	st := NewStorage(rp.Store())
	next, err := st.next(ctx)
	if err != nil {
		return nil, err
	}
	return &Suite{
		self:    rp.SelfID(),
		peer:    rp.OtherPartyIDs()[0],
		values:  rp.Values(),
		storage: st,
		first:   next,
		next:    next,
	}, nil
}

// Storage returns the preprocessed material.
func (s *Suite) Storage() *Storage { return s.storage }

func (s *Suite) id() uint64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	id := s.next
	s.next++
	return id
}

// span returns the range of ids allocated by this suite.
func (s *Suite) span() (uint64, uint64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.first, s.next
}

// Gates returns the ids of the tables built by this suite, in ascending order.
// Tables of earlier runs on the same store are left out.
func (s *Suite) Gates(ctx context.Context) ([]uint64, error) {
	from, to := s.span()
	return s.storage.pending(ctx, nsTables, from, to)
}

// Input creates an input wire owned by owner. Each party samples a share of
// the mask, and the owner learns the full mask.
func (s *Suite) Input(owner party.ID) (*schedule.Leaf, Wire) {
	w := Wire{ID: s.id(), Owner: owner, Mask: s.values.NewSBool()}
	return schedule.New(&inputProtocol{s: s, w: w}), w
}

type inputProtocol struct {
	s     *Suite
	w     Wire
	share bool
}

func (p *inputProtocol) Name() string        { return "tinytables/input" }
func (p *inputProtocol) Inputs() []value.ID  { return nil }
func (p *inputProtocol) Outputs() []value.ID { return []value.ID{p.w.Mask.ID} }

func (p *inputProtocol) Evaluate(ctx context.Context, r round.Number, rp *resource.Pool, ch network.Channel) (protocol.Status, error) {
	switch r {
	case 0:
		if p.w.Owner != 1 && p.w.Owner != 2 {
			return protocol.Done, fmt.Errorf("tinytables: invalid owner %v", p.w.Owner)
		}
		p.share = sample.Bool(rp.Rand())
		if err := rp.Values().SetSBool(p.w.Mask, p.share); err != nil {
			return protocol.Done, err
		}
		if err := p.s.storage.StoreWireShare(ctx, p.w.ID, p.share); err != nil {
			return protocol.Done, err
		}
		if p.w.Owner == p.s.self {
			ch.Expect(p.s.peer)
		} else if err := ch.Send(p.w.Owner, p.share); err != nil {
			return protocol.Done, err
		}
		return protocol.NeedsMoreRounds, nil
	case 1:
		if p.w.Owner != p.s.self {
			return protocol.Done, nil
		}
		var theirs bool
		if err := ch.Receive(p.s.peer, &theirs); err != nil {
			return protocol.Done, err
		}
		return protocol.Done, p.s.storage.StoreInputMask(ctx, p.w.ID, p.share != theirs)
	}
	return protocol.Done, protocol.Malformed(p.Name(), r)
}

// Wire creates an internal wire with a fresh random mask share.
func (s *Suite) Wire() (*schedule.Leaf, value.SBool) {
	out := s.values.NewSBool()
	return schedule.New(&localProtocol{name: "tinytables/wire", out: out, compute: func(rp *resource.Pool) (bool, error) {
		return sample.Bool(rp.Rand()), nil
	}}), out
}

// Xor returns a wire masked by the XOR of the masks of u and v.
// The online phase XORs the masked values without a table.
func (s *Suite) Xor(u, v value.SBool) (*schedule.Leaf, value.SBool) {
	out := s.values.NewSBool()
	return schedule.New(&localProtocol{name: "tinytables/xor", inputs: []value.ID{u.ID, v.ID}, out: out, compute: func(rp *resource.Pool) (bool, error) {
		a, aok := rp.Values().SBool(u)
		b, bok := rp.Values().SBool(v)
		if !aok || !bok {
			return false, errors.New("tinytables: xor of unset wires")
		}
		return a != b, nil
	}}), out
}

// Not returns a wire with the same mask as u. The online phase flips the
// masked value instead.
func (s *Suite) Not(u value.SBool) (*schedule.Leaf, value.SBool) {
	out := s.values.NewSBool()
	return schedule.New(&localProtocol{name: "tinytables/not", inputs: []value.ID{u.ID}, out: out, compute: func(rp *resource.Pool) (bool, error) {
		a, ok := rp.Values().SBool(u)
		if !ok {
			return false, errors.New("tinytables: not of an unset wire")
		}
		return a, nil
	}}), out
}

type localProtocol struct {
	name    string
	inputs  []value.ID
	out     value.SBool
	compute func(rp *resource.Pool) (bool, error)
}

func (p *localProtocol) Name() string        { return p.name }
func (p *localProtocol) Inputs() []value.ID  { return p.inputs }
func (p *localProtocol) Outputs() []value.ID { return []value.ID{p.out.ID} }

func (p *localProtocol) Evaluate(_ context.Context, r round.Number, rp *resource.Pool, _ network.Channel) (protocol.Status, error) {
	if r != 0 {
		return protocol.Done, protocol.Malformed(p.name, r)
	}
	b, err := p.compute(rp)
	if err != nil {
		return protocol.Done, err
	}
	return protocol.Done, rp.Values().SetSBool(p.out, b)
}
