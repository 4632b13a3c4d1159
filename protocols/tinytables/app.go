package tinytables

import (
	"context"
	"errors"

	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
)

// Preprocessing is an application preprocessing the circuit returned by
// Circuit. Finish must be called after the application ran.
type Preprocessing struct {
	Circuit func(s *Suite) (schedule.Node, error)

	suite *Suite
}

// Build implements sce.Application.
func (p *Preprocessing) Build(rp *resource.Pool) (schedule.Node, error) {
	s, err := New(context.Background(), rp)
	if err != nil {
		return nil, err
	}
	node, err := p.Circuit(s)
	if err != nil {
		return nil, err
	}
	p.suite = s
	return node, nil
}

// Suite returns the suite of the last build.
func (p *Preprocessing) Suite() *Suite { return p.suite }

// Finish runs the batched transfers over t.
func (p *Preprocessing) Finish(ctx context.Context, t Transfer) error {
	if p.suite == nil {
		return errors.New("tinytables: preprocessing was not built")
	}
	return p.suite.FinishPreprocessing(ctx, t)
}

// Chain returns a circuit of n AND gates, each taking the output of the
// previous gate and a fresh input of party 2.
func Chain(n int) func(s *Suite) (schedule.Node, error) {
	return func(s *Suite) (schedule.Node, error) {
		root := schedule.Par()
		in, w := s.Input(1)
		root.Append(in)
		acc := w.Mask
		for i := 0; i < n; i++ {
			in, w := s.Input(2)
			and, g := s.And(acc, w.Mask)
			root.Append(in, and)
			acc = g.Out
		}
		return root, nil
	}
}
