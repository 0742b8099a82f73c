package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
)

type Middleware func(http.HandlerFunc) http.HandlerFunc

// Chain wraps h so that mw[0] runs first.
func Chain(h http.HandlerFunc, mw ...Middleware) http.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
		)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.writeError(w, r, common.Internal(fmt.Errorf("panic: %v", v)))
			}
		}()
		next(w, r)
	}
}

func (s *Server) TimeoutMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.settings.RequestTimeout <= 0 {
			next(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.settings.RequestTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) BasicAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.settings.Gate.Allows(r.Header.Get(common.AuthorizationHeaderName)) {
			s.writeError(w, r, common.Unauthorized(common.MsgInvalidBasicToken))
			return
		}
		next(w, r)
	}
}

func (s *Server) RefreshTokenMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return s.bearer(common.RefreshTokenCookieName, s.sessions.VerifyRefresh, next)
}

func (s *Server) AccessTokenMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return s.bearer(common.AccessTokenCookieName, s.sessions.VerifyAccess, next)
}

// bearer resolves the token from the Authorization header, or from cookie
// when no header is sent, and stores the verified identity in the request
// context.
func (s *Server) bearer(cookie string, verify func(context.Context, string) (auth.Identity, error), next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := presentedToken(r, cookie)
		if !ok {
			s.writeError(w, r, common.Unauthorized(common.MsgInvalidBearerToken))
			return
		}

		id, err := verify(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := auth.WithToken(auth.WithIdentity(r.Context(), id), token)
		next(w, r.WithContext(ctx))
	}
}

func presentedToken(r *http.Request, cookie string) (string, bool) {
	if h := r.Header.Get(common.AuthorizationHeaderName); h != "" {
		return auth.BearerToken(h)
	}
	c, err := r.Cookie(cookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
