package httpapi

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

type fakeSessions struct {
	registerStatus string
	registerErr    error
	registered     services.RegisterInput

	pair      *services.TokenPair
	signInErr error

	refreshID  auth.Identity
	refreshErr error
	accessID   auth.Identity
	accessErr  error
	verified   string

	rotated   []string
	rotateErr error
	revoked   int64
	logoutErr error
	panicOn   string
}

func (f *fakeSessions) Register(_ context.Context, in services.RegisterInput) (string, error) {
	if f.panicOn == "register" {
		panic("boom")
	}
	f.registered = in
	return f.registerStatus, f.registerErr
}

func (f *fakeSessions) SignIn(context.Context, string, string) (*services.TokenPair, error) {
	return f.pair, f.signInErr
}

func (f *fakeSessions) VerifyRefresh(_ context.Context, token string) (auth.Identity, error) {
	f.verified = token
	return f.refreshID, f.refreshErr
}

func (f *fakeSessions) RefreshToken(_ context.Context, userID, username, presented string) (*services.TokenPair, error) {
	f.rotated = []string{userID, username, presented}
	return f.pair, f.rotateErr
}

func (f *fakeSessions) VerifyAccess(_ context.Context, token string) (auth.Identity, error) {
	f.verified = token
	return f.accessID, f.accessErr
}

func (f *fakeSessions) Logout(context.Context, string) (int64, error) {
	return f.revoked, f.logoutErr
}
