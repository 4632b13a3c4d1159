package network

import (
	"context"
	"fmt"
	"sync"

	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

// Local is an in-process endpoint of a network created with NewLocal.
type Local struct {
	self  party.ID
	peers map[party.ID]*Local
	// inbox[j] holds the messages sent by j to self.
	inbox map[party.ID]*queue

	once sync.Once
}

// NewLocal connects one in-memory endpoint per party.
func NewLocal(partyIDs party.IDSlice) map[party.ID]*Local {
	endpoints := make(map[party.ID]*Local, len(partyIDs))
	for _, id := range partyIDs {
		l := &Local{
			self:  id,
			peers: endpoints,
			inbox: make(map[party.ID]*queue, len(partyIDs)),
		}
		for _, j := range partyIDs {
			l.inbox[j] = newQueue()
		}
		endpoints[id] = l
	}
	return endpoints
}

func (l *Local) Send(ctx context.Context, to party.ID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	peer, ok := l.peers[to]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownParty, to)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return peer.inbox[l.self].push(cp)
}

func (l *Local) Receive(ctx context.Context, from party.ID) ([]byte, error) {
	q, ok := l.inbox[from]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownParty, from)
	}
	return q.pop(ctx)
}

// Close disconnects the endpoint. Peers receive ErrClosed once they drained
// what was sent before.
func (l *Local) Close() error {
	l.once.Do(func() {
		for _, q := range l.inbox {
			q.close()
		}
		for id, peer := range l.peers {
			if id != l.self {
				peer.inbox[l.self].close()
			}
		}
	})
	return nil
}
