package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/avatars"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

// maxBodySize leaves room for a base64 profile picture.
const maxBodySize = 2*avatars.MaxPictureSize + 64<<10

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.BadRequest(common.MsgInvalidRequestBody, nil)
	}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if fields := req.Validate(); fields != nil {
		s.writeError(w, r, common.Unprocessable("Unprocessable Entity", fields))
		return
	}

	s.logger.Info(r.Context(), "Registration request", "username", req.Username)

	status, err := s.sessions.Register(r.Context(), services.RegisterInput{
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
		s.writeError(w, r, err)
		return
	}

	s.writeOK(w, status)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req api.SignInRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if fields := req.Validate(); fields != nil {
		s.writeError(w, r, common.Unprocessable("Unprocessable Entity", fields))
		return
	}

	pair, err := s.sessions.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setTokenCookies(w, pair)
	s.writeOK(w, api.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		s.writeError(w, r, common.Unauthorized(common.MsgInvalidBearerToken))
		return
	}

	pair, err := s.sessions.RefreshToken(r.Context(), id.ID, id.Username, auth.TokenFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setTokenCookies(w, pair)
	s.writeOK(w, api.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		s.writeError(w, r, common.Unauthorized(common.MsgInvalidBearerToken))
		return
	}

	n, err := s.sessions.Logout(r.Context(), id.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.clearTokenCookies(w)
	s.writeOK(w, api.LogoutResponse{Revoked: n})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeOK(w, map[string]string{"status": "SERVING"})
}

func (s *Server) setTokenCookies(w http.ResponseWriter, pair *services.TokenPair) {
	maxAge := int(s.settings.CookieMaxAge.Seconds())
	for name, value := range map[string]string{
		common.AccessTokenCookieName:  pair.AccessToken,
		common.RefreshTokenCookieName: pair.RefreshToken,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (s *Server) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1, HttpOnly: true})
	}
}
