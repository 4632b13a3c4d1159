// Package sce evaluates protocol trees round by round and manages the
// lifetime of the resources of a session.
package sce

import (
	"context"
	"errors"
	"fmt"

	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/internal/params"
	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/metrics"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/protocol"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// ErrStalled is returned when no protocol can progress although the tree is not done,
// typically because a protocol waits on a value this party never receives.
var ErrStalled = errors.New("sce: no protocol can progress")

// Stats describes one run of the engine.
type Stats struct {
	Rounds        int
	Evaluations   int
	Protocols     int
	BytesSent     uint64
	BytesReceived uint64
}

// Engine evaluates protocol trees for one party.
//
// In every round, the ready leaves are evaluated, possibly in parallel on the
// worker pool, then the router exchanges the messages they produced. Every
// party must run the same trees in the same order, with the same MaxBatch.
type Engine struct {
	rp       *resource.Pool
	router   *network.Router
	log      log.Logger
	maxBatch int
	// task is the sequence number of the last admitted leaf. It is never
	// reset, so runs on the same engine never share task numbers.
	task uint64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxBatch bounds the number of leaves evaluated in a single round.
func WithMaxBatch(n int) EngineOption { return func(e *Engine) { e.maxBatch = n } }

// NewEngine returns an engine for the party described by rp, communicating over net.
// session tags the frames of this engine and must be the same for all parties.
func NewEngine(rp *resource.Pool, net network.Network, session []byte, opts ...EngineOption) *Engine {
	l := rp.Log().Named("sce")
	e := &Engine{
		rp:       rp,
		router:   network.NewRouter(net, rp.SelfID(), rp.PartyIDs(), session, l),
		log:      l,
		maxBatch: params.DefaultMaxBatch,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) available(ids []value.ID) bool {
	return e.rp.Values().Ready(ids...)
}

// Run evaluates root until every protocol in it is done.
func (e *Engine) Run(ctx context.Context, root schedule.Node) (stats Stats, err error) {
	sent0, received0 := e.router.Stats()
	defer func() {
		sent, received := e.router.Stats()
		stats.BytesSent, stats.BytesReceived = sent-sent0, received-received0
	}()

	for r := round.Number(0); ; r++ {
		if err = ctx.Err(); err != nil {
			return stats, err
		}

		leaves := schedule.Poll(root, e.available, e.maxBatch)
		if len(leaves) == 0 {
			if root.Done() {
				e.log.Debugw("application done", "rounds", stats.Rounds, "protocols", stats.Protocols,
					"values", e.rp.Values().Len(), "pending", e.router.Pending())
				return stats, nil
			}
			return stats, fmt.Errorf("%w: round %d", ErrStalled, r)
		}

		for _, l := range leaves {
			if !l.Started() {
				e.task++
				l.Start(e.task)
				stats.Protocols++
			}
		}

		statuses := make([]protocol.Status, len(leaves))
		err = e.rp.Workers().Parallelize(len(leaves), func(i int) error {
			l := leaves[i]
			status, err := l.Protocol().Evaluate(ctx, l.Round(), e.rp, e.router.Open(l.Task()))
			if err != nil {
				var perr protocol.Error
				if errors.As(err, &perr) {
					return err
				}
				return protocol.Error{Round: l.Round(), Protocol: protocol.Name(l.Protocol()), Err: err}
			}
			statuses[i] = status
			return nil
		})
		stats.Evaluations += len(leaves)
		if err != nil {
			metrics.Evaluations.WithLabelValues("error").Inc()
			e.log.Errorw("evaluation failed", "round", r, "err", err)
			return stats, err
		}

		done := 0
		for i, l := range leaves {
			if statuses[i] == protocol.Done {
				e.router.Finish(l.Task())
				done++
			}
		}
		if err = e.router.Exchange(ctx, r); err != nil {
			e.log.Errorw("exchange failed", "round", r, "err", err)
			return stats, fmt.Errorf("sce: round %d: %w", r, err)
		}
		for i, l := range leaves {
			l.Advance(statuses[i])
		}

		stats.Rounds++
		metrics.Rounds.Inc()
		metrics.Evaluations.WithLabelValues(protocol.Done.String()).Add(float64(done))
		metrics.Evaluations.WithLabelValues(protocol.NeedsMoreRounds.String()).Add(float64(len(leaves) - done))
		e.log.Debugw("round complete", "round", r, "evaluated", len(leaves), "done", done)
	}
}
