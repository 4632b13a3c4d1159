package ot

import (
	"context"
	"crypto/rand"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/internal/log/testlogger"
	"github.com/taurusgroup/multi-party-compute/pkg/math/curve"
	"github.com/taurusgroup/multi-party-compute/pkg/math/sample"
	"golang.org/x/sync/errgroup"
)

func pipe(t *testing.T, opts ...Option) (*Endpoint, *Endpoint) {
	a, b := net.Pipe()
	opts = append([]Option{WithLogger(testlogger.New(t))}, opts...)
	sender, receiver := NewEndpoint(a, opts...), NewEndpoint(b, opts...)
	t.Cleanup(func() {
		_ = sender.Close()
		_ = receiver.Close()
	})
	return sender, receiver
}

func randomPairs(n int) ([]Pair, []bool) {
	pairs := make([]Pair, n)
	zero, one := sample.Bools(rand.Reader, n), sample.Bools(rand.Reader, n)
	for i := range pairs {
		pairs[i] = Pair{Zero: zero[i], One: one[i]}
	}
	return pairs, sample.Bools(rand.Reader, n)
}

func transfer(t *testing.T, sender Sender, receiver Receiver, pairs []Pair, sigmas []bool) []bool {
	t.Helper()
	var out []bool
	eg, ctx := errgroup.WithContext(context.Background())
	eg.Go(func() error { return sender.Send(ctx, pairs) })
	eg.Go(func() error {
		var err error
		out, err = receiver.Receive(ctx, sigmas)
		return err
	})
	require.NoError(t, eg.Wait())
	return out
}

func TestEncodeBools(t *testing.T) {
	bits := []bool{true, false, false, true, true}
	encoded := EncodeBools(bits)
	assert.Equal(t, []byte{1, 0, 0, 1, 1}, encoded)
	decoded, err := DecodeBools(encoded)
	require.NoError(t, err)
	assert.Equal(t, bits, decoded)

	_, err = DecodeBools([]byte{0, 1, 2})
	assert.ErrorIs(t, err, ErrMalformed)

	decoded, err = DecodeBools(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestPairs(t *testing.T) {
	pairs, err := Pairs([]bool{false, true}, []bool{true, true})
	require.NoError(t, err)
	assert.Equal(t, []Pair{{false, true}, {true, true}}, pairs)
	assert.True(t, pairs[0].Select(true))
	assert.False(t, pairs[0].Select(false))

	_, err = Pairs([]bool{true}, nil)
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		n, max   int
		expected []Batch
	}{
		{0, 10, nil},
		{5, 0, []Batch{{0, 5}}},
		{10, 10, []Batch{{0, 10}}},
		{25, 10, []Batch{{0, 10}, {10, 20}, {20, 25}}},
		{3, 1, []Batch{{0, 1}, {1, 2}, {2, 3}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Split(tt.n, tt.max), "n=%d max=%d", tt.n, tt.max)
	}
}

func TestTransfer(t *testing.T) {
	for _, n := range []int{1, 2, 64, 500} {
		sender, receiver := pipe(t)
		pairs, sigmas := randomPairs(n)
		out := transfer(t, sender, receiver, pairs, sigmas)
		require.Len(t, out, n)
		for i := range pairs {
			assert.Equal(t, pairs[i].Select(sigmas[i]), out[i], "transfer %d of %d", i, n)
		}
	}
}

func TestTransferAboveCeiling(t *testing.T) {
	sender, receiver := pipe(t, WithMaxBatch(7))
	pairs, sigmas := randomPairs(50)
	out := transfer(t, sender, receiver, pairs, sigmas)
	require.Len(t, out, 50)
	for i := range pairs {
		assert.Equal(t, pairs[i].Select(sigmas[i]), out[i], "transfer %d", i)
	}
}

func TestTransferEmpty(t *testing.T) {
	sender, receiver := pipe(t)
	out := transfer(t, sender, receiver, nil, nil)
	assert.Empty(t, out)
}

func TestLengthMismatch(t *testing.T) {
	sender, receiver := pipe(t)
	pairs, _ := randomPairs(3)
	errc := make(chan error, 1)
	go func() { errc <- sender.Send(context.Background(), pairs) }()

	_, err := receiver.Receive(context.Background(), make([]bool, 4))
	assert.ErrorIs(t, err, ErrMalformed)
	require.NoError(t, receiver.Close())
	assert.ErrorIs(t, <-errc, ErrTransport)
}

func TestReceiveCancelled(t *testing.T) {
	_, receiver := pipe(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := receiver.Receive(ctx, []bool{true})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListenDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	accepted := make(chan *Endpoint, 1)
	go func() {
		e, err := Accept(ctx, ln, WithLogger(testlogger.New(t)), WithMaxBatch(16))
		assert.NoError(t, err)
		accepted <- e
	}()
	receiver, err := Dial(ctx, ln.Addr().String(), WithLogger(testlogger.New(t)), WithMaxBatch(16))
	require.NoError(t, err)
	defer receiver.Close()
	sender := <-accepted
	require.NotNil(t, sender)
	defer sender.Close()

	// The connection outlives a single transfer.
	for i := 0; i < 3; i++ {
		pairs, sigmas := randomPairs(40)
		out := transfer(t, sender, receiver, pairs, sigmas)
		for j := range pairs {
			assert.Equal(t, pairs[j].Select(sigmas[j]), out[j])
		}
	}
}

func TestReceiveRejectsBadEncoding(t *testing.T) {
	a, b := net.Pipe()
	receiver := NewEndpoint(b, WithLogger(testlogger.New(t)))
	defer receiver.Close()
	c := NewConn(a)
	defer c.Close()

	go func() {
		y, err := curve.RandomScalar(rand.Reader)
		if err != nil {
			return
		}
		sb, _ := y.ActOnBase().MarshalBinary()
		_ = c.SendData(sb)
		_ = c.SendUint32(1)
		_ = c.Flush()
		_, _ = c.ReceiveData()
		_ = c.SendData([]byte{0, 2})
		_ = c.Flush()
	}()

	_, err := receiver.Receive(context.Background(), []bool{true})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCancelAfterTransfer(t *testing.T) {
	sender, receiver := pipe(t)
	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		pairs, sigmas := randomPairs(4)
		var out []bool
		eg := errgroup.Group{}
		eg.Go(func() error { return sender.Send(ctx, pairs) })
		eg.Go(func() error {
			var err error
			out, err = receiver.Receive(ctx, sigmas)
			return err
		})
		require.NoError(t, eg.Wait(), "transfer %d", i)
		// cancelling a finished call must leave the connection usable
		cancel()
		for j := range pairs {
			assert.Equal(t, pairs[j].Select(sigmas[j]), out[j])
		}
	}
}
