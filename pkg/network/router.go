package network

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/metrics"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"golang.org/x/sync/errgroup"
)

// Router multiplexes the channels of all running protocols over a Network.
//
// Channels are not safe for concurrent use, but distinct channels may be
// used from distinct goroutines. Exchange must not run concurrently with any
// channel use.
//
// Tasks are local to a party: a party may run local protocols its peers do
// not. A channel is given a wire id, shared by all parties, the first time it
// sends or expects a message, in task order. Frames are numbered by the
// exchanges that carried messages, not by engine rounds. Parties must
// therefore agree on the order of the protocols that use the network, and on
// the exchanges each of them is active in.
type Router struct {
	net      Network
	self     party.ID
	partyIDs party.IDSlice
	session  []byte
	log      log.Logger

	mtx      sync.Mutex
	channels map[uint64]*channel
	wire     map[uint64]*channel
	lastWire uint64
	seq      uint32

	sent, received uint64
}

// NewRouter returns a Router for the given parties, which must include self.
// Frames from a peer that carry another session tag are rejected.
func NewRouter(net Network, self party.ID, partyIDs party.IDSlice, session []byte, l log.Logger) *Router {
	return &Router{
		net:      net,
		self:     self,
		partyIDs: partyIDs.Copy(),
		session:  session,
		log:      l,
		channels: map[uint64]*channel{},
		wire:     map[uint64]*channel{},
	}
}

// Open returns the channel of task, creating it on first use.
func (r *Router) Open(task uint64) Channel {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	c, ok := r.channels[task]
	if !ok {
		c = newChannel(task, r.self, r.partyIDs)
		r.channels[task] = c
	}
	return c
}

// Finish marks task as done. Its pending messages are still sent by the next
// Exchange, after which messages addressed to it are unexpected.
func (r *Router) Finish(task uint64) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if c, ok := r.channels[task]; ok {
		c.done = true
	}
}

// Pending returns the number of open channels, including channels of
// finished tasks whose messages have not been exchanged yet.
func (r *Router) Pending() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.channels)
}

// Stats returns the number of frame bytes sent and received.
func (r *Router) Stats() (sent, received uint64) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.sent, r.received
}

// Exchange ends round number. When a channel was active during the round,
// one frame is sent to every peer, then one frame is received from every
// peer. Rounds in which no channel was active do not touch the network.
func (r *Router) Exchange(ctx context.Context, number round.Number) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	tasks := make([]uint64, 0, len(r.channels))
	active := false
	for task, c := range r.channels {
		tasks = append(tasks, task)
		active = active || c.active
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i] < tasks[j] })
	for _, task := range tasks {
		if c := r.channels[task]; c.active && c.wire == 0 {
			r.lastWire++
			c.wire = r.lastWire
			r.wire[c.wire] = c
		}
	}

	seq := r.seq
	if active {
		r.seq++
	}
	frames := make(map[party.ID]*Frame, len(r.partyIDs))
	for _, j := range r.partyIDs {
		if j != r.self {
			frames[j] = &Frame{Session: r.session, Seq: seq}
		}
	}
	for _, task := range tasks {
		c := r.channels[task]
		c.arrived = map[party.ID]int{}
		for _, to := range r.partyIDs {
			for _, data := range c.outbox[to] {
				if to == r.self {
					c.inbox[r.self] = append(c.inbox[r.self], data)
					c.arrived[r.self]++
					continue
				}
				frames[to].Items = append(frames[to].Items, Item{Task: c.wire, Data: data})
			}
		}
		c.outbox = map[party.ID][][]byte{}
		c.active = false
		if c.done {
			delete(r.channels, task)
			delete(r.wire, c.wire)
		}
	}

	if !active {
		return nil
	}

	sendGroup, sendCtx := errgroup.WithContext(ctx)
	for j, frame := range frames {
		j, frame := j, frame
		data, err := cbor.Marshal(frame)
		if err != nil {
			return fmt.Errorf("network: encode frame: %w", err)
		}
		r.sent += uint64(len(data))
		metrics.NetworkBytes.WithLabelValues("sent").Add(float64(len(data)))
		sendGroup.Go(func() error {
			return r.net.Send(sendCtx, j, data)
		})
	}
	if err := sendGroup.Wait(); err != nil {
		return err
	}

	received := make(map[party.ID]*Frame, len(frames))
	var receivedMtx sync.Mutex
	recvGroup, recvCtx := errgroup.WithContext(ctx)
	for j := range frames {
		j := j
		recvGroup.Go(func() error {
			data, err := r.net.Receive(recvCtx, j)
			if err != nil {
				return err
			}
			var frame Frame
			if err = cbor.Unmarshal(data, &frame); err != nil {
				return fmt.Errorf("network: decode frame from %v: %w", j, err)
			}
			if !bytes.Equal(frame.Session, r.session) {
				return fmt.Errorf("%w: frame from %v belongs to another session", ErrUnexpected, j)
			}
			if frame.Seq != seq {
				return fmt.Errorf("%w: frame from %v is for exchange %d, expected %d", ErrRoundMismatch, j, frame.Seq, seq)
			}
			receivedMtx.Lock()
			received[j] = &frame
			r.received += uint64(len(data))
			receivedMtx.Unlock()
			metrics.NetworkBytes.WithLabelValues("received").Add(float64(len(data)))
			return nil
		})
	}
	if err := recvGroup.Wait(); err != nil {
		return err
	}

	for _, j := range r.partyIDs {
		frame, ok := received[j]
		if !ok {
			continue
		}
		for _, item := range frame.Items {
			c, ok := r.wire[item.Task]
			if !ok {
				return fmt.Errorf("%w: message from %v for unknown task %d", ErrUnexpected, j, item.Task)
			}
			c.inbox[j] = append(c.inbox[j], item.Data)
			c.arrived[j]++
		}
	}

	for _, task := range tasks {
		c, ok := r.channels[task]
		if !ok {
			continue
		}
		for from, n := range c.expect {
			if c.arrived[from] < n {
				return fmt.Errorf("%w: task %d expected %d message(s) from %v, got %d", ErrUnexpected, task, n, from, c.arrived[from])
			}
		}
		c.expect = map[party.ID]int{}
	}
	r.log.Debugw("exchanged", "round", number, "exchange", seq, "tasks", len(tasks))
	return nil
}
