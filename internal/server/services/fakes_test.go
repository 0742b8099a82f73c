package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

type fakeAccounts struct {
	registerOut *models.RegistrationStatus
	registerErr error
	registered  *models.Account

	findOut *models.Account
	findErr error
}

func (f *fakeAccounts) Register(_ context.Context, a *models.Account) (*models.RegistrationStatus, error) {
	f.registered = a
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerOut, nil
}

func (f *fakeAccounts) FindByUsername(context.Context, string) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.findOut == nil {
		return nil, common.ErrorNotFound
	}
	return f.findOut, nil
}

type fakeTokenStore struct {
	findOut *models.TokenRecord
	findErr error

	insertErr error
	rotateErr error

	deleteAllOut int64
	deleteAllErr error
	deletedFor   []string

	staleOut    int64
	staleBefore time.Time
}

func (f *fakeTokenStore) FindByRefreshToken(context.Context, string) (*models.TokenRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.findOut == nil {
		return nil, common.ErrorNotFound
	}
	return f.findOut, nil
}

func (f *fakeTokenStore) Insert(_ context.Context, userID, access, refresh string) (*models.TokenRecord, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return &models.TokenRecord{ID: "1", UserID: userID, AccessToken: access, RefreshToken: refresh}, nil
}

func (f *fakeTokenStore) UpdateRotation(context.Context, string, string, string, string) error {
	return f.rotateErr
}

func (f *fakeTokenStore) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	f.deletedFor = append(f.deletedFor, userID)
	return f.deleteAllOut, f.deleteAllErr
}

func (f *fakeTokenStore) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	f.staleBefore = before
	return f.staleOut, nil
}

type fakeManager struct {
	accounts *fakeAccounts
	tokens   *fakeTokenStore
}

func (m *fakeManager) RunMigrations(context.Context) error { return nil }
func (m *fakeManager) Close() error                        { return nil }

func (m *fakeManager) Accounts() users.Repository {
	if m.accounts == nil {
		return &fakeAccounts{}
	}
	return m.accounts
}

func (m *fakeManager) RefreshTokens() refreshtokens.Repository {
	if m.tokens == nil {
		return &fakeTokenStore{}
	}
	return m.tokens
}

type nopManager struct{}

func (nopManager) RunMigrations(context.Context) error     { return nil }
func (nopManager) Close() error                            { return nil }
func (nopManager) Accounts() users.Repository              { return &fakeAccounts{} }
func (nopManager) RefreshTokens() refreshtokens.Repository { return &fakeTokenStore{} }

// plainHasher skips bcrypt so error-path tests stay fast.
type plainHasher struct {
	hashErr   error
	verifyErr error
}

func (h plainHasher) Hash(p string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + p, nil
}

func (h plainHasher) Verify(p, hash string) (bool, error) {
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	return hash == "hashed:"+p, nil
}

type fakeAvatars struct {
	out string
	err error
}

func (f fakeAvatars) Save(context.Context, string, string) (string, error) {
	return f.out, f.err
}
