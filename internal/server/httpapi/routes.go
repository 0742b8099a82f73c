package httpapi

import "net/http"

const (
	RegisterPath = "/api/v1/accounts/register"
	SignInPath   = "/api/v1/accounts/signin"
	RefreshPath  = "/api/v1/refresh"
	LogoutPath   = "/api/v1/accounts/logout"
	HealthPath   = "/healthz"
)

func (s *Server) initRoutes() {
	s.mux.HandleFunc(http.MethodPost+" "+RegisterPath, Chain(s.handleRegister, s.BasicAuthMiddleware))
	s.mux.HandleFunc(http.MethodPost+" "+SignInPath, Chain(s.handleSignIn, s.BasicAuthMiddleware))
	s.mux.HandleFunc(http.MethodGet+" "+RefreshPath, Chain(s.handleRefresh, s.RefreshTokenMiddleware))
	s.mux.HandleFunc(http.MethodPost+" "+LogoutPath, Chain(s.handleLogout, s.AccessTokenMiddleware))
	s.mux.HandleFunc(http.MethodGet+" "+HealthPath, s.handleHealth)
}
