package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "mpc.SMC"

// SMCServer is the front-end controlling a party.
type SMCServer interface {
	Init(context.Context, *SessionCtx) (*CmdResult, error)
	PreparePhase(context.Context, *Prepare) (*CmdResult, error)
}

// SMCClient calls an SMCServer.
type SMCClient interface {
	Init(ctx context.Context, in *SessionCtx, opts ...grpc.CallOption) (*CmdResult, error)
	PreparePhase(ctx context.Context, in *Prepare, opts ...grpc.CallOption) (*CmdResult, error)
}

type smcClient struct {
	cc grpc.ClientConnInterface
}

// NewSMCClient returns a client using cc. The connection must use Codec.
func NewSMCClient(cc grpc.ClientConnInterface) SMCClient {
	return &smcClient{cc}
}

func (c *smcClient) Init(ctx context.Context, in *SessionCtx, opts ...grpc.CallOption) (*CmdResult, error) {
	out := new(CmdResult)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Init", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *smcClient) PreparePhase(ctx context.Context, in *Prepare, opts ...grpc.CallOption) (*CmdResult, error) {
	out := new(CmdResult)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/PreparePhase", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterSMCServer registers srv on s.
func RegisterSMCServer(s grpc.ServiceRegistrar, srv SMCServer) {
	s.RegisterService(&smcServiceDesc, srv)
}

func initHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SessionCtx)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SMCServer).Init(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Init"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SMCServer).Init(ctx, req.(*SessionCtx))
	}
	return interceptor(ctx, in, info, handler)
}

func prepareHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Prepare)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SMCServer).PreparePhase(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/PreparePhase"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SMCServer).PreparePhase(ctx, req.(*Prepare))
	}
	return interceptor(ctx, in, info, handler)
}

var smcServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SMCServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Init", Handler: initHandler},
		{MethodName: "PreparePhase", Handler: prepareHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mpc/smc",
}
