package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AccountAPI is the generated-style client surface; tests substitute a fake.
type AccountAPI interface {
	Register(ctx context.Context, in *api.RegisterRequest, opts ...grpc.CallOption) (*api.RegisterResponse, error)
	SignIn(ctx context.Context, in *api.SignInRequest, opts ...grpc.CallOption) (*api.TokenPair, error)
	Refresh(ctx context.Context, in *api.RefreshRequest, opts ...grpc.CallOption) (*api.TokenPair, error)
	Logout(ctx context.Context, in *api.LogoutRequest, opts ...grpc.CallOption) (*api.LogoutResponse, error)
}

// HealthChecker is the Check half of the gRPC health client.
type HealthChecker interface {
	Check(ctx context.Context, in *healthpb.HealthCheckRequest, opts ...grpc.CallOption) (*healthpb.HealthCheckResponse, error)
}

type GRPCClient struct {
	conn    *grpc.ClientConn
	client  AccountAPI
	health  HealthChecker
	basic   string
	timeout time.Duration
}

func withAuthorization(ctx context.Context, value string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, value)
}

func bearer(token string) string { return "Bearer " + token }

// BasicAuthorization builds the Authorization value for the client
// credentials that gate register and sign-in.
func BasicAuthorization(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// NewGRPCClient connects lazily to endpointURL. basic is the complete
// Authorization value sent with register and sign-in.
func NewGRPCClient(endpointURL, basic string, timeout time.Duration) (*GRPCClient, error) {
	conn, err := grpc.NewClient(endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &GRPCClient{
		conn:    conn,
		client:  api.NewAccountServiceClient(conn),
		health:  healthpb.NewHealthClient(conn),
		basic:   basic,
		timeout: timeout,
	}, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Register(ctx context.Context, req *api.RegisterRequest) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Register(withAuthorization(ctx, s.basic), req)
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Status, nil
}

func (s *GRPCClient) SignIn(ctx context.Context, username, password string) (*api.TokenPair, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.SignIn(withAuthorization(ctx, s.basic), &api.SignInRequest{Username: username, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Refresh(withAuthorization(ctx, bearer(refreshToken)), &api.RefreshRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Logout(ctx context.Context, accessToken string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Logout(withAuthorization(ctx, bearer(accessToken)), &api.LogoutRequest{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Revoked, nil
}

// Health reports the serving status of the account service.
func (s *GRPCClient) Health(ctx context.Context) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: api.ServiceName})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetStatus().String(), nil
}

// mapError keeps the server's message and classifies the failure so callers
// can use errors.Is.
func (s *GRPCClient) mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
