package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	registered *api.RegisterRequest
	status     string

	signIn    *api.TokenPair
	signInErr error

	refreshed   []string
	refreshPair *api.TokenPair
	refreshErr  error

	logouts   []string
	logoutErr []error
	revoked   int64

	health    string
	healthErr error
}

func (f *fakeAccounts) Register(_ context.Context, req *api.RegisterRequest) (string, error) {
	f.registered = req
	return f.status, nil
}

func (f *fakeAccounts) SignIn(context.Context, string, string) (*api.TokenPair, error) {
	return f.signIn, f.signInErr
}

func (f *fakeAccounts) Refresh(_ context.Context, token string) (*api.TokenPair, error) {
	f.refreshed = append(f.refreshed, token)
	return f.refreshPair, f.refreshErr
}

func (f *fakeAccounts) Logout(_ context.Context, token string) (int64, error) {
	f.logouts = append(f.logouts, token)
	if len(f.logoutErr) > 0 {
		err := f.logoutErr[0]
		f.logoutErr = f.logoutErr[1:]
		if err != nil {
			return 0, err
		}
	}
	return f.revoked, nil
}

func (f *fakeAccounts) Health(context.Context) (string, error) {
	return f.health, f.healthErr
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func newTestApp(t *testing.T, f *fakeAccounts, input string) (*App, *client.TokenCache, *bytes.Buffer) {
	t.Helper()

	cache, err := client.OpenTokenCache(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	var out bytes.Buffer
	return &App{
		config:     cfg,
		accounts:   f,
		cache:      cache,
		httpClient: http.DefaultClient,
		reader:     bufio.NewReader(strings.NewReader(input)),
		out:        &out,
	}, cache, &out
}

func TestRun_HelpAndUnknown(t *testing.T) {
	a, _, out := newTestApp(t, &fakeAccounts{}, "")

	require.NoError(t, a.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "Available commands")

	err := a.Run(context.Background(), []string{"frobnicate"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRegister(t *testing.T) {
	stubPassword(t, "Passw0rd1")
	f := &fakeAccounts{status: "ACCOUNT_REGISTERED"}
	input := "Alice\nLiddell\n09123456789\nalice@example.com\nalice_1234\nPleasance\nhttps://example.com/alice.png\n"
	a, _, out := newTestApp(t, f, input)

	require.NoError(t, a.Run(context.Background(), []string{"register"}))

	require.NotNil(t, f.registered)
	assert.Equal(t, "alice_1234", f.registered.Username)
	assert.Equal(t, "Passw0rd1", f.registered.Password)
	require.NotNil(t, f.registered.MiddleName)
	assert.Equal(t, "Pleasance", *f.registered.MiddleName)
	assert.Equal(t, "https://example.com/alice.png", f.registered.ProfilePicture)
	assert.Contains(t, out.String(), "ACCOUNT_REGISTERED")
}

func TestRegister_PictureFromFile(t *testing.T) {
	stubPassword(t, "Passw0rd1")
	path := filepath.Join(t.TempDir(), "alice.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o600))

	f := &fakeAccounts{status: "ACCOUNT_REGISTERED"}
	input := fmt.Sprintf("Alice\nLiddell\n09123456789\nalice@example.com\nalice_1234\n\n%s\n", path)
	a, _, _ := newTestApp(t, f, input)

	require.NoError(t, a.Register(context.Background()))
	assert.Nil(t, f.registered.MiddleName)
	assert.True(t, strings.HasPrefix(f.registered.ProfilePicture, "data:image/png;base64,"))
}

func TestRegister_ValidatesLocally(t *testing.T) {
	stubPassword(t, "short")
	f := &fakeAccounts{}
	input := "Alice\nLiddell\n123\nalice@example.com\nalice_1234\n\nhttps://example.com/alice.png\n"
	a, _, out := newTestApp(t, f, input)

	err := a.Register(context.Background())
	assert.ErrorIs(t, err, client.ErrRejected)
	assert.Nil(t, f.registered)
	assert.Contains(t, out.String(), "contact_number: Invalid contact number")
	assert.Contains(t, out.String(), "password: Password must be at least 8 characters")
}

func TestSignIn_CachesTokens(t *testing.T) {
	stubPassword(t, "Passw0rd1")
	f := &fakeAccounts{signIn: &api.TokenPair{AccessToken: "a1", RefreshToken: "r1"}}
	a, cache, out := newTestApp(t, f, "alice_1234\n")

	require.NoError(t, a.Run(context.Background(), []string{"signin"}))

	s, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, "alice_1234", s.Username)
	assert.Equal(t, "r1", s.RefreshToken)
	assert.Contains(t, out.String(), "Signed in as alice_1234")
}

func TestSignIn_Failure(t *testing.T) {
	stubPassword(t, "nope")
	f := &fakeAccounts{signInErr: fmt.Errorf("%w: %s", client.ErrUnauthorized, common.MsgInvalidCredentials)}
	a, cache, _ := newTestApp(t, f, "alice_1234\n")

	err := a.SignIn(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = cache.Load()
	assert.ErrorIs(t, err, client.ErrNotSignedIn)
}

func TestRefresh_RotatesCache(t *testing.T) {
	f := &fakeAccounts{refreshPair: &api.TokenPair{AccessToken: "a2", RefreshToken: "r2"}}
	a, cache, _ := newTestApp(t, f, "")
	require.NoError(t, cache.Save(&client.Session{Username: "alice_1234", AccessToken: "a1", RefreshToken: "r1"}))

	require.NoError(t, a.Run(context.Background(), []string{"refresh"}))

	assert.Equal(t, []string{"r1"}, f.refreshed)
	s, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, "r2", s.RefreshToken)
	assert.Equal(t, "alice_1234", s.Username)
}

func TestRefresh_ReusedClearsCache(t *testing.T) {
	f := &fakeAccounts{refreshErr: fmt.Errorf("%w: %s", client.ErrForbidden, common.MsgRefreshTokenReused)}
	a, cache, _ := newTestApp(t, f, "")
	require.NoError(t, cache.Save(&client.Session{Username: "alice_1234", RefreshToken: "r1"}))

	err := a.Refresh(context.Background())
	assert.ErrorIs(t, err, client.ErrForbidden)
	assert.ErrorContains(t, err, "sign in again")

	_, err = cache.Load()
	assert.ErrorIs(t, err, client.ErrNotSignedIn)
}

func TestRefresh_NotSignedIn(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeAccounts{}, "")
	assert.ErrorIs(t, a.Refresh(context.Background()), client.ErrNotSignedIn)
}

func TestLogout(t *testing.T) {
	f := &fakeAccounts{revoked: 2}
	a, cache, out := newTestApp(t, f, "")
	require.NoError(t, cache.Save(&client.Session{Username: "alice_1234", AccessToken: "a1", RefreshToken: "r1"}))

	require.NoError(t, a.Run(context.Background(), []string{"logout"}))

	assert.Equal(t, []string{"a1"}, f.logouts)
	assert.Contains(t, out.String(), "2 session(s) revoked")
	_, err := cache.Load()
	assert.ErrorIs(t, err, client.ErrNotSignedIn)
}

func TestLogout_RefreshesExpiredAccessToken(t *testing.T) {
	f := &fakeAccounts{
		logoutErr:   []error{fmt.Errorf("%w: %s", client.ErrUnauthorized, common.MsgAccessTokenExpired)},
		refreshPair: &api.TokenPair{AccessToken: "a2", RefreshToken: "r2"},
		revoked:     1,
	}
	a, cache, _ := newTestApp(t, f, "")
	require.NoError(t, cache.Save(&client.Session{Username: "alice_1234", AccessToken: "a1", RefreshToken: "r1"}))

	require.NoError(t, a.Logout(context.Background()))

	assert.Equal(t, []string{"r1"}, f.refreshed)
	assert.Equal(t, []string{"a1", "a2"}, f.logouts)
}

func TestLogout_OtherErrorKeepsCache(t *testing.T) {
	f := &fakeAccounts{logoutErr: []error{fmt.Errorf("%w: down", client.ErrUnavailable)}}
	a, cache, _ := newTestApp(t, f, "")
	require.NoError(t, cache.Save(&client.Session{Username: "alice_1234", AccessToken: "a1"}))

	assert.ErrorIs(t, a.Logout(context.Background()), client.ErrUnavailable)
	assert.Empty(t, f.refreshed)

	_, err := cache.Load()
	assert.NoError(t, err)
}

func TestStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":200,"data":{"status":"SERVING"},"message":"Success"}`))
	}))
	defer ts.Close()

	f := &fakeAccounts{health: "SERVING"}
	a, cache, out := newTestApp(t, f, "")
	a.config.HealthURL = ts.URL + "/healthz"

	require.NoError(t, a.Run(context.Background(), []string{"status"}))
	assert.Contains(t, out.String(), "gRPC 127.0.0.1:50051: SERVING")
	assert.Contains(t, out.String(), "/healthz: SERVING")
	assert.Contains(t, out.String(), "Not signed in")

	out.Reset()
	require.NoError(t, cache.Save(&client.Session{Username: "alice_1234", SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}))
	f.healthErr = errors.New("connection refused")

	require.NoError(t, a.Status(context.Background()))
	assert.Contains(t, out.String(), "gRPC 127.0.0.1:50051: connection refused")
	assert.Contains(t, out.String(), "Signed in as alice_1234 since 2026-01-02T03:04:05Z")
}

func TestNewApp(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.TokenCachePath = filepath.Join(t.TempDir(), "cache", "tokens.db")

	a, err := NewApp(cfg)
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}
