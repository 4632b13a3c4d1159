package network

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/internal/log/testlogger"
	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"golang.org/x/sync/errgroup"
)

func routers(t *testing.T, n int) (party.IDSlice, map[party.ID]*Router) {
	ids := party.Range(n)
	nets := NewLocal(ids)
	out := make(map[party.ID]*Router, n)
	for _, id := range ids {
		out[id] = NewRouter(nets[id], id, ids, []byte("session"), testlogger.New(t))
	}
	return ids, out
}

// each runs f concurrently for every party.
func each(ids party.IDSlice, f func(id party.ID) error) error {
	var eg errgroup.Group
	for _, id := range ids {
		id := id
		eg.Go(func() error { return f(id) })
	}
	return eg.Wait()
}

func TestRouter_Broadcast(t *testing.T) {
	ctx := context.Background()
	ids, rs := routers(t, 3)

	// round 0: every party sends its id to all
	require.NoError(t, each(ids, func(id party.ID) error {
		ch := rs[id].Open(1)
		if err := ch.SendToAll(uint16(id) * 10); err != nil {
			return err
		}
		ch.ExpectFromAll()
		return rs[id].Exchange(ctx, 0)
	}))

	// round 1: every party reads all values
	require.NoError(t, each(ids, func(id party.ID) error {
		ch := rs[id].Open(1)
		for _, j := range ids {
			var v uint16
			if err := ch.Receive(j, &v); err != nil {
				return err
			}
			if v != uint16(j)*10 {
				return fmt.Errorf("party %v got %d from %v", id, v, j)
			}
		}
		rs[id].Finish(1)
		return rs[id].Exchange(ctx, 1)
	}))

	for _, id := range ids {
		assert.Zero(t, rs[id].Pending())
		sent, received := rs[id].Stats()
		assert.NotZero(t, sent)
		assert.NotZero(t, received)
	}
}

func TestRouter_TasksAreSeparated(t *testing.T) {
	ctx := context.Background()
	ids, rs := routers(t, 2)

	require.NoError(t, each(ids, func(id party.ID) error {
		other := ids.Remove(id)[0]
		a, b := rs[id].Open(1), rs[id].Open(2)
		_ = a.Send(other, "a")
		_ = b.Send(other, "b")
		a.Expect(other)
		b.Expect(other)
		return rs[id].Exchange(ctx, 0)
	}))

	for _, id := range ids {
		other := ids.Remove(id)[0]
		var s string
		require.NoError(t, rs[id].Open(2).Receive(other, &s))
		assert.Equal(t, "b", s)
		require.NoError(t, rs[id].Open(1).Receive(other, &s))
		assert.Equal(t, "a", s)
		assert.ErrorIs(t, rs[id].Open(1).Receive(other, &s), ErrUnexpected)
	}
}

func TestRouter_LocalRoundSkipsNetwork(t *testing.T) {
	_, rs := routers(t, 2)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// nobody else takes part; an inactive round must not block
	rs[1].Open(7)
	require.NoError(t, rs[1].Exchange(ctx, 0))
	sent, _ := rs[1].Stats()
	assert.Zero(t, sent)
}

func TestRouter_RoundMismatch(t *testing.T) {
	ctx := context.Background()
	ids := party.Range(2)
	nets := NewLocal(ids)
	r := NewRouter(nets[1], 1, ids, []byte("session"), testlogger.New(t))

	stale, err := cbor.Marshal(&Frame{Session: []byte("session"), Seq: 3})
	require.NoError(t, err)
	require.NoError(t, nets[2].Send(ctx, 1, stale))

	r.Open(1).ExpectFromAll()
	assert.ErrorIs(t, r.Exchange(ctx, 0), ErrRoundMismatch)
}

func TestRouter_LocalTasksDoNotShiftWires(t *testing.T) {
	ctx := context.Background()
	ids, rs := routers(t, 2)

	// party 1 runs two local tasks and an idle round before the shared one
	rs[1].Open(1)
	rs[1].Open(2)
	rs[1].Finish(1)
	require.NoError(t, rs[1].Exchange(ctx, 0))
	rs[1].Finish(2)
	require.NoError(t, rs[1].Exchange(ctx, 1))

	task := map[party.ID]uint64{1: 3, 2: 1}
	rounds := map[party.ID]round.Number{1: 2, 2: 0}
	require.NoError(t, each(ids, func(id party.ID) error {
		ch := rs[id].Open(task[id])
		if err := ch.SendToAll(uint16(id)); err != nil {
			return err
		}
		ch.ExpectFromAll()
		return rs[id].Exchange(ctx, rounds[id])
	}))

	for _, id := range ids {
		ch := rs[id].Open(task[id])
		for _, j := range ids {
			var v uint16
			require.NoError(t, ch.Receive(j, &v))
			assert.EqualValues(t, j, v)
		}
	}
}

func TestRouter_LeftoverDoesNotSatisfyExpect(t *testing.T) {
	ctx := context.Background()
	ids, rs := routers(t, 2)

	require.NoError(t, each(ids, func(id party.ID) error {
		other := ids.Remove(id)[0]
		ch := rs[id].Open(1)
		if err := ch.Send(other, "unread"); err != nil {
			return err
		}
		ch.Expect(other)
		return rs[id].Exchange(ctx, 0)
	}))

	// the unread message of the previous round must not count
	err := each(ids, func(id party.ID) error {
		rs[id].Open(1).Expect(ids.Remove(id)[0])
		return rs[id].Exchange(ctx, 1)
	})
	assert.ErrorIs(t, err, ErrUnexpected)
}

func TestRouter_MissingMessage(t *testing.T) {
	ctx := context.Background()
	ids, rs := routers(t, 2)
	err := each(ids, func(id party.ID) error {
		ch := rs[id].Open(1)
		if id == 1 {
			ch.Expect(2)
		} else {
			ch.Expect(1)
		}
		return rs[id].Exchange(ctx, 0)
	})
	assert.ErrorIs(t, err, ErrUnexpected)
}

func TestRouter_MessageForFinishedTask(t *testing.T) {
	ctx := context.Background()
	ids, rs := routers(t, 2)
	err := each(ids, func(id party.ID) error {
		ch := rs[id].Open(1)
		_ = ch.SendToAll(1)
		rs[id].Finish(1)
		return rs[id].Exchange(ctx, 0)
	})
	assert.ErrorIs(t, err, ErrUnexpected)
}

func TestRouter_UnknownParty(t *testing.T) {
	_, rs := routers(t, 2)
	assert.ErrorIs(t, rs[1].Open(1).Send(9, 1), ErrUnknownParty)
}

func TestLocal_Close(t *testing.T) {
	ids := party.Range(2)
	nets := NewLocal(ids)
	ctx := context.Background()
	require.NoError(t, nets[1].Send(ctx, 2, []byte("last")))
	require.NoError(t, nets[1].Close())

	data, err := nets[2].Receive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("last"), data)
	_, err = nets[2].Receive(ctx, 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, nets[2].Send(ctx, 1, nil), ErrClosed)
}
