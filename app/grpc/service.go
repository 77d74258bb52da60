package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName           = "sessionauth.SessionService"
	ValidateSessionMethod = "/" + ServiceName + "/ValidateSession"
	WhoAmIMethod          = "/" + ServiceName + "/WhoAmI"
)

// SessionServiceServer is the server API of sessionauth.SessionService. The
// messages are protobuf well-known types, so no generated code is needed.
type SessionServiceServer interface {
	ValidateSession(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	WhoAmI(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

var SessionServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "ValidateSession", Handler: validateSessionHandler},
		{MethodName: "WhoAmI", Handler: whoAmIHandler},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "sessionauth/session.proto",
}

func RegisterSessionServiceServer(s gogrpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&SessionServiceDesc, srv)
}

func validateSessionHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServiceServer).ValidateSession(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: ValidateSessionMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServiceServer).ValidateSession(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func whoAmIHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServiceServer).WhoAmI(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: WhoAmIMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServiceServer).WhoAmI(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// SessionServiceClient calls sessionauth.SessionService.
type SessionServiceClient struct {
	cc gogrpc.ClientConnInterface
}

func NewSessionServiceClient(cc gogrpc.ClientConnInterface) *SessionServiceClient {
	return &SessionServiceClient{cc: cc}
}

func (c *SessionServiceClient) ValidateSession(ctx context.Context, in *wrapperspb.StringValue, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ValidateSessionMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SessionServiceClient) WhoAmI(ctx context.Context, in *emptypb.Empty, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, WhoAmIMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
