package network

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/internal/log/testlogger"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

func freeAddresses(t *testing.T, ids party.IDSlice) map[party.ID]string {
	out := map[party.ID]string{}
	for _, id := range ids {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		out[id] = l.Addr().String()
		require.NoError(t, l.Close())
	}
	return out
}

func TestTCP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ids := party.Range(3)
	addresses := freeAddresses(t, ids)
	nets := map[party.ID]*TCP{}
	var mtx sync.Mutex
	err := each(ids, func(id party.ID) error {
		n, err := Connect(ctx, testlogger.New(t), id, addresses)
		if err != nil {
			return err
		}
		mtx.Lock()
		nets[id] = n
		mtx.Unlock()
		return nil
	})
	require.NoError(t, err)

	rs := map[party.ID]*Router{}
	for _, id := range ids {
		rs[id] = NewRouter(nets[id], id, ids, []byte("tcp"), testlogger.New(t))
	}

	require.NoError(t, each(ids, func(id party.ID) error {
		ch := rs[id].Open(1)
		if err := ch.SendToAll(fmt.Sprintf("hello from %v", id)); err != nil {
			return err
		}
		ch.ExpectFromAll()
		return rs[id].Exchange(ctx, 0)
	}))
	for _, id := range ids {
		ch := rs[id].Open(1)
		for _, j := range ids {
			var s string
			require.NoError(t, ch.Receive(j, &s))
			assert.Equal(t, fmt.Sprintf("hello from %v", j), s)
		}
	}

	// a frame queued before Close must still reach the peer
	require.NoError(t, nets[3].Send(ctx, 1, []byte("bye")))
	require.NoError(t, nets[3].Close())
	data, err := nets[1].Receive(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("bye"), data)
	_, err = nets[1].Receive(ctx, 3)
	assert.ErrorIs(t, err, ErrClosed)

	require.NoError(t, nets[1].Close())
	require.NoError(t, nets[2].Close())
}

func TestTCP_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	ids := party.Range(2)
	// party 2 never shows up
	_, err := Connect(ctx, testlogger.New(t), 1, freeAddresses(t, ids))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
