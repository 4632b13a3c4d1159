package tinytables

import (
	"context"
	"errors"

	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/math/sample"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/ot"
	"github.com/taurusgroup/multi-party-compute/pkg/protocol"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// And preprocesses an AND gate with inputs u and v.
//
// The cross terms r¹_U r²_V and r²_U r¹_V of r_U r_V are computed with two
// oblivious transfers, deferred to FinishPreprocessing. Party 1 completes its
// table immediately, party 2 once the transfers are done.
func (s *Suite) And(u, v value.SBool) (*schedule.Leaf, Gate) {
	g := Gate{ID: s.id(), Out: s.values.NewSBool()}
	return schedule.New(&andProtocol{s: s, u: u, v: v, gate: g}), g
}

type andProtocol struct {
	s    *Suite
	u, v value.SBool
	gate Gate
}

func (p *andProtocol) Name() string        { return "tinytables/and" }
func (p *andProtocol) Inputs() []value.ID  { return []value.ID{p.u.ID, p.v.ID} }
func (p *andProtocol) Outputs() []value.ID { return []value.ID{p.gate.Out.ID} }

func (p *andProtocol) Evaluate(ctx context.Context, r round.Number, rp *resource.Pool, _ network.Channel) (protocol.Status, error) {
	if r != 0 {
		return protocol.Done, protocol.Malformed(p.Name(), r)
	}
	values := rp.Values()
	rU, uok := values.SBool(p.u)
	rV, vok := values.SBool(p.v)
	if !uok || !vok {
		return protocol.Done, errors.New("tinytables: and of unset wires")
	}
	rO := sample.Bool(rp.Rand())
	if err := values.SetSBool(p.gate.Out, rO); err != nil {
		return protocol.Done, err
	}

	st := p.s.storage
	if p.s.self == 1 {
		x0, x1 := sample.Bool(rp.Rand()), sample.Bool(rp.Rand())
		pairs := [2]ot.Pair{
			{Zero: x0, One: x0 != rU},
			{Zero: x1, One: x1 != rV},
		}
		if err := st.StoreOTInputs(ctx, p.gate.ID, pairs); err != nil {
			return protocol.Done, err
		}
		return protocol.Done, st.StoreTable(ctx, p.gate.ID, player1Table(rU, rV, rO, x0, x1))
	}
	// Party 2 selects with r²_V in the first transfer and r²_U in the second.
	if err := st.StoreSigmas(ctx, p.gate.ID, [2]bool{rV, rU}); err != nil {
		return protocol.Done, err
	}
	return protocol.Done, st.StoreMask(ctx, p.gate.ID, rO)
}
