package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func authorization(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AuthorizationHeaderName)
		if len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// authInterceptor gates register and sign-in behind the basic client
// credentials, and resolves the bearer token of refresh and logout into an
// identity stored in ctx.
func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	switch info.FullMethod {
	case api.RegisterMethod, api.SignInMethod:
		if !s.gate.Allows(authorization(ctx)) {
			return nil, s.fail(ctx, common.Unauthorized(common.MsgInvalidBasicToken))
		}

	case api.RefreshMethod, api.LogoutMethod:
		token, ok := auth.BearerToken(authorization(ctx))
		if !ok {
			return nil, s.fail(ctx, common.Unauthorized(common.MsgInvalidBearerToken))
		}

		verify := s.sessions.VerifyAccess
		if info.FullMethod == api.RefreshMethod {
			verify = s.sessions.VerifyRefresh
		}

		id, err := verify(ctx, token)
		if err != nil {
			return nil, s.fail(ctx, err)
		}

		ctx = auth.WithToken(auth.WithIdentity(ctx, id), token)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) timeoutInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.timeout <= 0 {
		return handler(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "grpc call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"elapsed", time.Since(start),
	)
	return resp, err
}

func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "panic in handler", "method", info.FullMethod, "panic", fmt.Sprint(r))
			err = status.Error(codes.Internal, "Internal Server Error")
		}
	}()
	return handler(ctx, req)
}
