// Package httpapi serves the account endpoints over HTTP/JSON: registration
// and sign-in behind the basic client credentials, refresh and logout behind
// bearer tokens, and a health probe.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

// Sessions is the part of services.SessionManager the HTTP API drives.
type Sessions interface {
	Register(ctx context.Context, in services.RegisterInput) (string, error)
	SignIn(ctx context.Context, username, password string) (*services.TokenPair, error)
	VerifyRefresh(ctx context.Context, token string) (auth.Identity, error)
	RefreshToken(ctx context.Context, userID, username, presented string) (*services.TokenPair, error)
	VerifyAccess(ctx context.Context, token string) (auth.Identity, error)
	Logout(ctx context.Context, userID string) (int64, error)
}

type Settings struct {
	Gate           auth.BasicGate
	CookieMaxAge   time.Duration
	RequestTimeout time.Duration
}

type Server struct {
	address  string
	mux      *http.ServeMux
	handler  http.Handler
	sessions Sessions
	settings Settings
	logger   logging.Logger
}

func New(address string, l logging.Logger, s Sessions, settings Settings) *Server {
	srv := &Server{
		address:  address,
		mux:      http.NewServeMux(),
		sessions: s,
		settings: settings,
		logger:   l.With("module", "http_server"),
	}
	srv.initRoutes()
	srv.handler = Chain(srv.mux.ServeHTTP, srv.LoggingMiddleware, srv.RecoverMiddleware, srv.TimeoutMiddleware)
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
