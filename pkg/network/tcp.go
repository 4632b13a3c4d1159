package network

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/internal/params"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

const (
	dialRetryDelay = 200 * time.Millisecond
	sendQueueSize  = 256
	closeTimeout   = 5 * time.Second
)

// TCP is a Network over one TCP connection per pair of parties.
// The party with the larger ID dials the one with the smaller ID.
type TCP struct {
	self  party.ID
	log   log.Logger
	peers map[party.ID]*peerConn
	once  sync.Once
}

type peerConn struct {
	id   party.ID
	conn net.Conn
	r    *bufio.Reader
	out  chan []byte
	// done is closed when the writer stops.
	done chan struct{}

	mtx     sync.RWMutex
	closing bool
	err     error
}

// Connect listens on the address of self and connects to every other party in addresses.
// It returns once every connection is established or ctx is done.
func Connect(ctx context.Context, l log.Logger, self party.ID, addresses map[party.ID]string) (*TCP, error) {
	addr, ok := addresses[self]
	if !ok {
		return nil, fmt.Errorf("%w: no address for self %v", ErrUnknownParty, self)
	}
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("network: listen: %w", err)
	}
	defer listener.Close()

	t := &TCP{self: self, log: l.Named("tcp"), peers: map[party.ID]*peerConn{}}

	var expectAccept int
	for id := range addresses {
		if id > self {
			expectAccept++
		}
	}

	type result struct {
		p   *peerConn
		err error
	}
	results := make(chan result, len(addresses))

	go func() {
		for i := 0; i < expectAccept; i++ {
			nc, err := listener.Accept()
			if err != nil {
				results <- result{err: err}
				return
			}
			p, err := t.accept(nc, addresses)
			if err != nil {
				t.log.Warnw("rejected inbound connection", "remote", nc.RemoteAddr(), "err", err)
				_ = nc.Close()
				i--
				continue
			}
			results <- result{p: p}
		}
	}()

	for id, peerAddr := range addresses {
		if id >= self {
			continue
		}
		go func(id party.ID, peerAddr string) {
			p, err := t.dial(ctx, id, peerAddr)
			results <- result{p: p, err: err}
		}(id, peerAddr)
	}

	for len(t.peers) < len(addresses)-1 {
		select {
		case <-ctx.Done():
			t.Close()
			return nil, ctx.Err()
		case r := <-results:
			if r.err != nil {
				t.Close()
				return nil, fmt.Errorf("network: connect: %w", r.err)
			}
			if _, dup := t.peers[r.p.id]; dup {
				_ = r.p.conn.Close()
				continue
			}
			t.peers[r.p.id] = r.p
			go r.p.writeLoop(t.log)
		}
	}
	t.log.Infow("connected", "self", self, "peers", len(t.peers))
	return t, nil
}

func (t *TCP) dial(ctx context.Context, id party.ID, addr string) (*peerConn, error) {
	var d net.Dialer
	for {
		nc, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			if _, err = nc.Write(t.self.Bytes()); err != nil {
				_ = nc.Close()
				return nil, err
			}
			t.log.Debugw("dialed peer", "peer", id, "addr", addr)
			return newPeerConn(id, nc), nil
		}
		t.log.Debugw("dial failed, retrying", "peer", id, "addr", addr, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dialRetryDelay):
		}
	}
}

func (t *TCP) accept(nc net.Conn, addresses map[party.ID]string) (*peerConn, error) {
	var b [party.ByteSize]byte
	_ = nc.SetReadDeadline(time.Now().Add(10 * time.Second))
	if _, err := io.ReadFull(nc, b[:]); err != nil {
		return nil, err
	}
	_ = nc.SetReadDeadline(time.Time{})
	id := party.FromBytes(b[:])
	if _, ok := addresses[id]; !ok || id <= t.self {
		return nil, fmt.Errorf("%w: unexpected handshake from %v", ErrUnknownParty, id)
	}
	t.log.Debugw("accepted peer", "peer", id)
	return newPeerConn(id, nc), nil
}

func newPeerConn(id party.ID, nc net.Conn) *peerConn {
	return &peerConn{
		id:   id,
		conn: nc,
		r:    bufio.NewReader(nc),
		out:  make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// writeLoop writes queued frames until out is closed and drained.
func (p *peerConn) writeLoop(l log.Logger) {
	defer close(p.done)
	w := bufio.NewWriter(p.conn)
	var header [4]byte
	for data := range p.out {
		binary.BigEndian.PutUint32(header[:], uint32(len(data)))
		_, err := w.Write(header[:])
		if err == nil {
			_, err = w.Write(data)
		}
		if err == nil && len(p.out) == 0 {
			err = w.Flush()
		}
		if err != nil {
			l.Errorw("write failed", "peer", p.id, "err", err)
			p.setErr(err)
			_ = p.conn.Close()
			// keep draining so that senders never block on a dead peer
			for range p.out {
			}
			return
		}
	}
	_ = w.Flush()
}

func (p *peerConn) setErr(err error) {
	p.mtx.Lock()
	if p.err == nil {
		p.err = err
	}
	p.mtx.Unlock()
}

func (p *peerConn) send(ctx context.Context, data []byte) error {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	if p.closing {
		return ErrClosed
	}
	if p.err != nil {
		return fmt.Errorf("%w: %v", ErrClosed, p.err)
	}
	select {
	case p.out <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close flushes pending frames, then closes the connection.
func (p *peerConn) close(timeout time.Duration) {
	p.mtx.Lock()
	if p.closing {
		p.mtx.Unlock()
		return
	}
	p.closing = true
	close(p.out)
	p.mtx.Unlock()

	select {
	case <-p.done:
	case <-time.After(timeout):
	}
	if tc, ok := p.conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}
	_ = p.conn.Close()
}

func (t *TCP) Send(ctx context.Context, to party.ID, data []byte) error {
	p, ok := t.peers[to]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownParty, to)
	}
	if len(data) > params.MaxFrameBytes {
		return fmt.Errorf("network: frame of %d bytes exceeds limit", len(data))
	}
	return p.send(ctx, data)
}

func (t *TCP) Receive(ctx context.Context, from party.ID) ([]byte, error) {
	p, ok := t.peers[from]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownParty, from)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()

	var header [4]byte
	if _, err := io.ReadFull(p.r, header[:]); err != nil {
		return nil, t.readError(ctx, p, err)
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > params.MaxFrameBytes {
		return nil, fmt.Errorf("network: peer %v announced %d bytes", from, size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(p.r, data); err != nil {
		return nil, t.readError(ctx, p, err)
	}
	return data, nil
}

func (t *TCP) readError(ctx context.Context, p *peerConn, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: peer %v disconnected", ErrClosed, p.id)
	}
	return fmt.Errorf("network: receive from %v: %w", p.id, err)
}

// Close flushes what was sent and closes every connection.
func (t *TCP) Close() error {
	t.once.Do(func() {
		var wg sync.WaitGroup
		for _, p := range t.peers {
			wg.Add(1)
			go func(p *peerConn) {
				defer wg.Done()
				p.close(closeTimeout)
			}(p)
		}
		wg.Wait()
	})
	return nil
}
