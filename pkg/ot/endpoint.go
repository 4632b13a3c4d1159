package ot

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/internal/params"
	"github.com/taurusgroup/multi-party-compute/pkg/metrics"
	"github.com/taurusgroup/multi-party-compute/pkg/pool"
)

const dialRetryDelay = 200 * time.Millisecond

// Endpoint is one side of a long lived transfer connection. It can act as
// Sender or Receiver, the peer must take the other role for every call.
// Inputs larger than the batch ceiling are transferred as consecutive
// sub-batches, and the outputs are concatenated in order. Both ends must
// use the same ceiling.
type Endpoint struct {
	mtx      sync.Mutex
	conn     *Conn
	rand     io.Reader
	maxBatch int
	log      log.Logger
}

var (
	_ Sender   = (*Endpoint)(nil)
	_ Receiver = (*Endpoint)(nil)
)

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithRand sets the source of randomness, crypto/rand by default.
func WithRand(r io.Reader) Option { return func(e *Endpoint) { e.rand = r } }

// WithMaxBatch sets the batch ceiling, params.MaxOTs by default.
func WithMaxBatch(n int) Option { return func(e *Endpoint) { e.maxBatch = n } }

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option { return func(e *Endpoint) { e.log = l } }

// NewEndpoint runs transfers over c.
func NewEndpoint(c net.Conn, opts ...Option) *Endpoint {
	e := &Endpoint{
		conn:     NewConn(c),
		rand:     pool.NewLockedReader(rand.Reader),
		maxBatch: params.MaxOTs,
		log:      log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("ot")
	return e
}

// MaxBatch returns the batch ceiling.
func (e *Endpoint) MaxBatch() int { return e.maxBatch }

// Send offers pairs to the receiver at the other end.
func (e *Endpoint) Send(ctx context.Context, pairs []Pair) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	stop := e.conn.watch(ctx)
	defer stop()

	for _, b := range Split(len(pairs), e.maxBatch) {
		if err := sendBatch(e.conn, e.rand, pairs[b.Start:b.End]); err != nil {
			return e.fail(ctx, "sender", err)
		}
		metrics.OTBatches.WithLabelValues("sender").Inc()
		metrics.OTTransfers.WithLabelValues("sender").Add(float64(b.Len()))
		e.log.Debugw("batch sent", "start", b.Start, "size", b.Len())
	}
	return nil
}

// Receive obtains the bits selected by sigmas from the sender at the other end.
func (e *Endpoint) Receive(ctx context.Context, sigmas []bool) ([]bool, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	stop := e.conn.watch(ctx)
	defer stop()

	out := make([]bool, 0, len(sigmas))
	for _, b := range Split(len(sigmas), e.maxBatch) {
		bits, err := receiveBatch(e.conn, e.rand, sigmas[b.Start:b.End])
		if err != nil {
			return nil, e.fail(ctx, "receiver", err)
		}
		out = append(out, bits...)
		metrics.OTBatches.WithLabelValues("receiver").Inc()
		metrics.OTTransfers.WithLabelValues("receiver").Add(float64(b.Len()))
		e.log.Debugw("batch received", "start", b.Start, "size", b.Len())
	}
	return out, nil
}

func (e *Endpoint) fail(ctx context.Context, role string, err error) error {
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	e.log.Errorw("transfer failed", "role", role, "err", err)
	return err
}

// Close closes the connection.
func (e *Endpoint) Close() error {
	return e.conn.Close()
}

// Accept waits for a single peer on ln.
func Accept(ctx context.Context, ln net.Listener, opts ...Option) (*Endpoint, error) {
	type result struct {
		c   net.Conn
		err error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := ln.Accept()
		ch <- result{c, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("%w: accept: %v", ErrTransport, r.err)
		}
		return NewEndpoint(r.c, opts...), nil
	}
}

// Listen accepts a single peer on address, and stops listening afterwards.
func Listen(ctx context.Context, address string, opts ...Option) (*Endpoint, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: listen: %v", ErrTransport, err)
	}
	defer ln.Close()
	return Accept(ctx, ln, opts...)
}

// Dial connects to the endpoint listening on address, retrying until ctx is done.
func Dial(ctx context.Context, address string, opts ...Option) (*Endpoint, error) {
	var d net.Dialer
	for {
		c, err := d.DialContext(ctx, "tcp", address)
		if err == nil {
			return NewEndpoint(c, opts...), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, address, err)
		case <-time.After(dialRetryDelay):
		}
	}
}
