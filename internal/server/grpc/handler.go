package grpc

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {

	if fields := req.Validate(); fields != nil {
		return nil, s.fail(ctx, common.Unprocessable("Unprocessable Entity", fields))
	}

	result, err := s.sessions.Register(ctx, services.RegisterInput{
		GivenName:      req.GivenName,
		MiddleName:     req.MiddleNameOrEmpty(),
		LastName:       req.LastName,
		ContactNumber:  req.ContactNumber,
		ContactEmail:   req.ContactEmail,
		Username:       req.Username,
		Password:       req.Password,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", req.Username)
	return &api.RegisterResponse{Status: result}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.TokenPair, error) {

	if fields := req.Validate(); fields != nil {
		return nil, s.fail(ctx, common.Unprocessable("Unprocessable Entity", fields))
	}

	tokens, err := s.sessions.SignIn(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return &api.TokenPair{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, _ *api.RefreshRequest) (*api.TokenPair, error) {

	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, s.fail(ctx, common.Unauthorized(common.MsgInvalidBearerToken))
	}

	tokens, err := s.sessions.RefreshToken(ctx, id.ID, id.Username, auth.TokenFromContext(ctx))
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return &api.TokenPair{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *api.LogoutRequest) (*api.LogoutResponse, error) {

	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, s.fail(ctx, common.Unauthorized(common.MsgInvalidBearerToken))
	}

	n, err := s.sessions.Logout(ctx, id.ID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return &api.LogoutResponse{Revoked: n}, nil
}
