package sce

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/taurusgroup/multi-party-compute/internal/hash"
	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/pkg/metrics"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
)

// ErrSessionClosed is returned by Run after Close.
var ErrSessionClosed = errors.New("sce: session closed")

// Application builds the protocol tree of a computation for one party.
// It is called once per Run, with the resources of the session.
type Application interface {
	Build(rp *resource.Pool) (schedule.Node, error)
}

// ApplicationFunc adapts a function to Application.
type ApplicationFunc func(rp *resource.Pool) (schedule.Node, error)

// Build implements Application.
func (f ApplicationFunc) Build(rp *resource.Pool) (schedule.Node, error) { return f(rp) }

type closer struct {
	name  string
	close func() error
}

// Session owns the resources of a party for a sequence of application runs:
// the network, the store, the worker pool and any service registered with OnClose.
type Session struct {
	id     string
	rp     *resource.Pool
	net    network.Network
	engine *Engine
	log    log.Logger

	mtx     sync.Mutex
	closers []closer
	closed  bool
}

// Digest returns the frame tag derived from the session id and its parties.
func Digest(id string, rp *resource.Pool) []byte {
	h := hash.New("session")
	_ = h.WriteAny(id)
	for _, j := range rp.PartyIDs() {
		_ = h.WriteAny(j)
	}
	return h.Sum()[:16]
}

// NewSession returns a session for the party described by rp.
// The session takes ownership of net and of the store of rp.
func NewSession(id string, rp *resource.Pool, net network.Network, opts ...EngineOption) *Session {
	s := &Session{
		id:     id,
		rp:     rp,
		net:    net,
		engine: NewEngine(rp, net, Digest(id, rp), opts...),
		log:    rp.Log().Named("session").With("session", id),
	}
	s.OnClose("store", rp.Store().Close)
	s.OnClose("workers", func() error {
		rp.Workers().TearDown()
		return nil
	})
	s.OnClose("network", net.Close)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Pool returns the resources of the session.
func (s *Session) Pool() *resource.Pool { return s.rp }

// OnClose registers f to be called by Close. Closers run in reverse order of registration.
func (s *Session) OnClose(name string, f func() error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.closers = append(s.closers, closer{name: name, close: f})
}

// Run builds app and evaluates it to completion.
// Several applications may run one after the other on the same session.
func (s *Session) Run(ctx context.Context, app Application) (Stats, error) {
	s.mtx.Lock()
	closed := s.closed
	s.mtx.Unlock()
	if closed {
		return Stats{}, ErrSessionClosed
	}

	root, err := app.Build(s.rp)
	if err != nil {
		return Stats{}, fmt.Errorf("sce: build application: %w", err)
	}

	start := time.Now()
	stats, err := s.engine.Run(ctx, root)
	metrics.ApplicationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Errorw("application failed", "err", err, "rounds", stats.Rounds)
		return stats, err
	}
	s.log.Infow("application done", "rounds", stats.Rounds, "protocols", stats.Protocols,
		"sent", stats.BytesSent, "received", stats.BytesReceived)
	return stats, nil
}

// Close releases every resource of the session. It waits for nothing but
// the flushing of pending messages, and reports every failure. Calling Close
// again is a no-op.
func (s *Session) Close() error {
	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return nil
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.mtx.Unlock()

	var result *multierror.Error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.close(); err != nil {
			s.log.Warnw("close failed", "resource", c.name, "err", err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	s.log.Infow("session closed")
	return result.ErrorOrNil()
}
