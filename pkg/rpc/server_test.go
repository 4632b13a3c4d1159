package rpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/internal/log/testlogger"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

type prepared struct {
	sync.Mutex
	session   string
	addresses map[party.ID]string
	err       error
}

func (p *prepared) prepare(_ context.Context, session string, addresses map[party.ID]string) error {
	p.Lock()
	defer p.Unlock()
	p.session, p.addresses = session, addresses
	return p.err
}

func startServer(t *testing.T, p *prepared) SMCClient {
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(testlogger.New(t), p.prepare)
	g := srv.GRPC()
	go func() { _ = g.Serve(lis) }()
	t.Cleanup(g.Stop)

	conn, err := Dial(context.Background(), "bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewSMCClient(conn)
}

func TestInitPrepare(t *testing.T) {
	p := &prepared{}
	client := startServer(t, p)
	ctx := context.Background()

	participants := &Prepare{Participants: []Participant{
		{ID: 1, Addr: "127.0.0.1:9001"},
		{ID: 2, Addr: "127.0.0.1:9002"},
		{ID: 3, Addr: "localhost:9003"},
	}}
	res, err := client.PreparePhase(ctx, participants)
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, res.Status, "prepare before init")

	res, err = client.Init(ctx, &SessionCtx{SessionID: "not a uuid"})
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, res.Status)

	const session = "0b6e7a8c-43a7-4d0e-9a5e-6f7c1c2b9d10"
	res, err = client.Init(ctx, &SessionCtx{SessionID: session})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Contains(t, res.Msg, session)

	res, err = client.PreparePhase(ctx, participants)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status, res.Msg)

	p.Lock()
	assert.Equal(t, session, p.session)
	assert.Equal(t, map[party.ID]string{1: "127.0.0.1:9001", 2: "127.0.0.1:9002", 3: "localhost:9003"}, p.addresses)
	p.Unlock()

	p.Lock()
	p.err = errors.New("connection refused")
	p.Unlock()
	res, err = client.PreparePhase(ctx, participants)
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, res.Status)
	assert.Contains(t, res.Msg, "connection refused")
}

func TestInitRandomSession(t *testing.T) {
	client := startServer(t, &prepared{})
	res, err := client.Init(context.Background(), &SessionCtx{})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
}

func TestAddresses(t *testing.T) {
	tests := []struct {
		name         string
		participants []Participant
	}{
		{"single", []Participant{{ID: 1, Addr: "a:1"}}},
		{"zero id", []Participant{{ID: 0, Addr: "a:1"}, {ID: 2, Addr: "b:2"}}},
		{"duplicate", []Participant{{ID: 1, Addr: "a:1"}, {ID: 1, Addr: "b:2"}}},
		{"no port", []Participant{{ID: 1, Addr: "a"}, {ID: 2, Addr: "b:2"}}},
		{"bad port", []Participant{{ID: 1, Addr: "a:http"}, {ID: 2, Addr: "b:2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Addresses(tt.participants)
			assert.Error(t, err)
		})
	}
	addresses, err := Addresses([]Participant{{ID: 2, Addr: "b:2"}, {ID: 1, Addr: "a:1"}})
	require.NoError(t, err)
	assert.Len(t, addresses, 2)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "failure", StatusFailure.String())
	assert.Equal(t, "unknown", Status(7).String())
}
