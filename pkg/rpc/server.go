// Package rpc implements the gRPC front-end through which an operator
// starts a session and hands the list of participants to a party.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/pkg/metrics"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrNoSession is reported by PreparePhase before Init.
var ErrNoSession = errors.New("rpc: no session")

// PrepareFunc receives a validated session: its id and the address of
// every party. It typically connects the network of the session.
type PrepareFunc func(ctx context.Context, session string, addresses map[party.ID]string) error

// Server implements SMCServer.
type Server struct {
	log     log.Logger
	prepare PrepareFunc

	mtx     sync.Mutex
	session string
}

var _ SMCServer = (*Server)(nil)

// NewServer returns a server handing prepared sessions to prepare.
func NewServer(l log.Logger, prepare PrepareFunc) *Server {
	return &Server{log: l.Named("rpc"), prepare: prepare}
}

// Session returns the id of the current session, or "".
func (s *Server) Session() string {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.session
}

func failure(format string, args ...interface{}) *CmdResult {
	return &CmdResult{Msg: fmt.Sprintf(format, args...), Status: StatusFailure}
}

// Init starts the session with the given id. An empty id picks a random one.
func (s *Server) Init(_ context.Context, in *SessionCtx) (*CmdResult, error) {
	id := in.SessionID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return failure("invalid session id %q: %v", id, err), nil
	}
	s.mtx.Lock()
	s.session = id
	s.mtx.Unlock()
	s.log.Infow("session initialized", "session", id)
	return &CmdResult{Msg: "init done, session " + id, Status: StatusSuccess}, nil
}

// PreparePhase validates the participants and hands them to the PrepareFunc.
func (s *Server) PreparePhase(ctx context.Context, in *Prepare) (*CmdResult, error) {
	session := s.Session()
	if session == "" {
		return failure("%v", ErrNoSession), nil
	}
	addresses, err := Addresses(in.Participants)
	if err != nil {
		return failure("%v", err), nil
	}
	s.log.Infow("prepare", "session", session, "participants", len(addresses))
	if err = s.prepare(ctx, session, addresses); err != nil {
		s.log.Errorw("prepare failed", "session", session, "err", err)
		return failure("prepare failed: %v", err), nil
	}
	return &CmdResult{Msg: "prepare done", Status: StatusSuccess}, nil
}

// Addresses validates participants: at least two, unique non-zero ids, and
// host:port addresses.
func Addresses(participants []Participant) (map[party.ID]string, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("rpc: %d participants, at least 2 required", len(participants))
	}
	out := make(map[party.ID]string, len(participants))
	for _, p := range participants {
		id := party.ID(p.ID)
		if id == 0 {
			return nil, errors.New("rpc: participant id 0")
		}
		if _, ok := out[id]; ok {
			return nil, fmt.Errorf("rpc: duplicate participant %v", id)
		}
		_, port, err := net.SplitHostPort(p.Addr)
		if err != nil {
			return nil, fmt.Errorf("rpc: participant %v: %w", id, err)
		}
		if n, err := strconv.ParseUint(port, 10, 16); err != nil || n == 0 {
			return nil, fmt.Errorf("rpc: participant %v: invalid port %q", id, port)
		}
		out[id] = p.Addr
	}
	return out, nil
}

// GRPC returns a gRPC server exposing s, with prometheus interceptors.
func (s *Server) GRPC(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ForceServerCodec(Codec{}),
		grpc.UnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
		grpc.StreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	)
	g := grpc.NewServer(opts...)
	RegisterSMCServer(g, s)
	grpc_prometheus.Register(g)
	_ = metrics.PrivateMetrics.Register(grpc_prometheus.DefaultServerMetrics)
	return g
}

// Listen opens address, either host:port or unix:///path/to/socket.
func Listen(ctx context.Context, address string) (net.Listener, error) {
	var lc net.ListenConfig
	if path := strings.TrimPrefix(address, "unix://"); path != address {
		return lc.Listen(ctx, "unix", path)
	}
	return lc.Listen(ctx, "tcp", address)
}

// Dial connects to the server at address, which may use the unix:// scheme.
func Dial(ctx context.Context, address string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	}, opts...)
	return grpc.DialContext(ctx, address, opts...)
}
