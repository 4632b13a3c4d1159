package network

import (
	"context"
	"sync"
)

// queue is an unbounded FIFO of messages with a blocking pop.
type queue struct {
	mtx    sync.Mutex
	items  [][]byte
	closed bool
	notify chan struct{}
}

func newQueue() *queue {
	return &queue{notify: make(chan struct{}, 1)}
}

func (q *queue) push(data []byte) error {
	q.mtx.Lock()
	if q.closed {
		q.mtx.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, data)
	q.mtx.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// pop returns queued items even after close, and ErrClosed once drained.
func (q *queue) pop(ctx context.Context) ([]byte, error) {
	for {
		q.mtx.Lock()
		if len(q.items) > 0 {
			data := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mtx.Unlock()
			return data, nil
		}
		closed := q.closed
		q.mtx.Unlock()
		if closed {
			return nil, ErrClosed
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *queue) close() {
	q.mtx.Lock()
	q.closed = true
	q.mtx.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
