package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages are google.protobuf.Struct so the service needs no generated code.
const (
	AuthorizationServiceName = "rbac.AuthorizationService"
	LoginMethod              = "/rbac.AuthorizationService/Login"
	CheckPermissionMethod    = "/rbac.AuthorizationService/CheckPermission"
)

// AuthorizationServer is the server API of rbac.AuthorizationService.
type AuthorizationServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckPermission(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var AuthorizationServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthorizationServiceName,
	HandlerType: (*AuthorizationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unaryHandler(LoginMethod, AuthorizationServer.Login)},
		{MethodName: "CheckPermission", Handler: unaryHandler(CheckPermissionMethod, AuthorizationServer.CheckPermission)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rbac/authorization.proto",
}

func RegisterAuthorizationServer(s grpc.ServiceRegistrar, srv AuthorizationServer) {
	s.RegisterService(&AuthorizationServiceDesc, srv)
}

type rpc func(AuthorizationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call rpc) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthorizationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AuthorizationServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AuthorizationClient is the client API of rbac.AuthorizationService.
type AuthorizationClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthorizationClient(cc grpc.ClientConnInterface) *AuthorizationClient {
	return &AuthorizationClient{cc: cc}
}

func (c *AuthorizationClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LoginMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthorizationClient) CheckPermission(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CheckPermissionMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
