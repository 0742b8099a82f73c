package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "authkeeper.v1.AccountService"

// Full method names, as seen by interceptors.
const (
	RegisterMethod = "/" + ServiceName + "/Register"
	SignInMethod   = "/" + ServiceName + "/SignIn"
	RefreshMethod  = "/" + ServiceName + "/Refresh"
	LogoutMethod   = "/" + ServiceName + "/Logout"
)

// AccountServiceServer is implemented by the gRPC transport.
type AccountServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	SignIn(context.Context, *SignInRequest) (*TokenPair, error)
	Refresh(context.Context, *RefreshRequest) (*TokenPair, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
}

// RegisterAccountServiceServer registers srv on s.
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}

var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(RegisterMethod, AccountServiceServer.Register)},
		{MethodName: "SignIn", Handler: unaryHandler(SignInMethod, AccountServiceServer.SignIn)},
		{MethodName: "Refresh", Handler: unaryHandler(RefreshMethod, AccountServiceServer.Refresh)},
		{MethodName: "Logout", Handler: unaryHandler(LogoutMethod, AccountServiceServer.Logout)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "authkeeper/v1/account",
}

// unaryHandler adapts one AccountServiceServer method to grpc.MethodDesc.
func unaryHandler[Req, Resp any](fullMethod string, call func(AccountServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AccountServiceClient calls the service over the JSON codec.
type AccountServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountServiceClient(cc grpc.ClientConnInterface) *AccountServiceClient {
	return &AccountServiceClient{cc: cc}
}

func (c *AccountServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	out := new(RegisterResponse)
	if err := c.invoke(ctx, RegisterMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountServiceClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*TokenPair, error) {
	out := new(TokenPair)
	if err := c.invoke(ctx, SignInMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*TokenPair, error) {
	out := new(TokenPair)
	if err := c.invoke(ctx, RefreshMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	out := new(LogoutResponse)
	if err := c.invoke(ctx, LogoutMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}
