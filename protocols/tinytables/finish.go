package tinytables

import (
	"context"
	"fmt"

	"github.com/taurusgroup/multi-party-compute/pkg/ot"
)

// Transfer is the oblivious transfer endpoint connecting both parties.
type Transfer interface {
	ot.Sender
	ot.Receiver
}

// FinishPreprocessing runs the deferred transfers of every AND gate created
// by s, in a single batch ordered by gate id. Party 1 sends, party 2 receives
// and computes its tables. It must be called once, after the circuit ran.
func (s *Suite) FinishPreprocessing(ctx context.Context, t Transfer) error {
	from, to := s.span()
	if s.self == 1 {
		return s.finishSender(ctx, t, from, to)
	}
	return s.finishReceiver(ctx, t, from, to)
}

func (s *Suite) finishSender(ctx context.Context, t ot.Sender, from, to uint64) error {
	gates, err := s.storage.pending(ctx, nsOTInputs, from, to)
	if err != nil {
		return fmt.Errorf("tinytables: %w", err)
	}
	pairs := make([]ot.Pair, 0, 2*len(gates))
	for _, g := range gates {
		p, err := s.storage.OTInputs(ctx, g)
		if err != nil {
			return fmt.Errorf("tinytables: gate %d: %w", g, err)
		}
		pairs = append(pairs, p[0], p[1])
	}
	if err = t.Send(ctx, pairs); err != nil {
		return fmt.Errorf("tinytables: transfer: %w", err)
	}
	return nil
}

func (s *Suite) finishReceiver(ctx context.Context, t ot.Receiver, from, to uint64) error {
	gates, err := s.storage.pending(ctx, nsSigmas, from, to)
	if err != nil {
		return fmt.Errorf("tinytables: %w", err)
	}
	sigmas := make([]bool, 0, 2*len(gates))
	for _, g := range gates {
		sg, err := s.storage.Sigmas(ctx, g)
		if err != nil {
			return fmt.Errorf("tinytables: gate %d: %w", g, err)
		}
		sigmas = append(sigmas, sg[0], sg[1])
	}
	ys, err := t.Receive(ctx, sigmas)
	if err != nil {
		return fmt.Errorf("tinytables: transfer: %w", err)
	}
	if len(ys) != len(sigmas) {
		return fmt.Errorf("tinytables: %w: %d outputs for %d transfers", ot.ErrMalformed, len(ys), len(sigmas))
	}
	for i, g := range gates {
		rO, err := s.storage.Mask(ctx, g)
		if err != nil {
			return fmt.Errorf("tinytables: gate %d: %w", g, err)
		}
		rV, rU := sigmas[2*i], sigmas[2*i+1]
		table := player2Table(rU, rV, rO, ys[2*i], ys[2*i+1])
		if err = s.storage.StoreTable(ctx, g, table); err != nil {
			return fmt.Errorf("tinytables: gate %d: %w", g, err)
		}
	}
	return nil
}
