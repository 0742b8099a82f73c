package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Sessions is the part of services.SessionManager the transport drives.
type Sessions interface {
	Register(ctx context.Context, in services.RegisterInput) (string, error)
	SignIn(ctx context.Context, username, password string) (*services.TokenPair, error)
	VerifyRefresh(ctx context.Context, token string) (auth.Identity, error)
	RefreshToken(ctx context.Context, userID, username, presented string) (*services.TokenPair, error)
	VerifyAccess(ctx context.Context, token string) (auth.Identity, error)
	Logout(ctx context.Context, userID string) (int64, error)
}

type GRPCServer struct {
	address  string
	sessions Sessions
	gate     auth.BasicGate
	timeout  time.Duration
	logger   logging.Logger
	health   *health.Server
}

func NewGRPCServer(a string, l logging.Logger, s Sessions, gate auth.BasicGate, timeout time.Duration) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		sessions: s,
		gate:     gate,
		timeout:  timeout,
		health:   health.NewServer(),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.recoveryInterceptor,
		s.loggingInterceptor,
		s.timeoutInterceptor,
		s.authInterceptor,
	))

	api.RegisterAccountServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
