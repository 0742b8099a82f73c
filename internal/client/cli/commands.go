package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/filex"
	"github.com/dmitrijs2005/authkeeper/internal/netx"
)

// now is a test seam.
var now = time.Now

func (a *App) prompt(label string) (string, error) {
	return GetSimpleText(a.reader, label, a.out)
}

func (a *App) Register(ctx context.Context) error {
	req := &api.RegisterRequest{}

	fields := []struct {
		label string
		dst   *string
	}{
		{"Given name", &req.GivenName},
		{"Last name", &req.LastName},
		{"Contact number (09XXXXXXXXX)", &req.ContactNumber},
		{"Contact email", &req.ContactEmail},
		{"Username", &req.Username},
	}
	for _, f := range fields {
		v, err := a.prompt(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	middle, err := a.prompt("Middle name (optional)")
	if err != nil {
		return err
	}
	if middle != "" {
		req.MiddleName = &middle
	}

	if req.Password, err = GetPassword(a.out); err != nil {
		return err
	}

	picture, err := a.prompt("Profile picture (file path or URL)")
	if err != nil {
		return err
	}
	if req.ProfilePicture, err = resolvePicture(picture); err != nil {
		return err
	}

	if problems := req.Validate(); problems != nil {
		for _, name := range slices.Sorted(maps.Keys(problems)) {
			fmt.Fprintf(a.out, "  %s: %s\n", name, problems[name])
		}
		return fmt.Errorf("%w: invalid registration details", client.ErrRejected)
	}

	status, err := a.accounts.Register(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, status)
	return nil
}

// resolvePicture turns a local image file into a data URI and passes
// anything else (a URL) through.
func resolvePicture(value string) (string, error) {
	if value == "" || strings.Contains(value, "://") {
		return value, nil
	}
	if _, err := os.Stat(value); err != nil {
		return value, nil
	}
	return filex.ReadDataURI(value)
}

func (a *App) SignIn(ctx context.Context) error {
	username, err := a.prompt("Username")
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	pair, err := a.accounts.SignIn(ctx, username, password)
	if err != nil {
		return err
	}

	if err := a.save(username, pair); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", username)
	return nil
}

func (a *App) save(username string, pair *api.TokenPair) error {
	return a.cache.Save(&client.Session{
		Username:     username,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		SavedAt:      now(),
	})
}

func (a *App) Refresh(ctx context.Context) error {
	s, err := a.cache.Load()
	if err != nil {
		return err
	}

	if _, err := a.rotate(ctx, s); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Tokens refreshed")
	return nil
}

// rotate exchanges the cached refresh token. A forbidden answer means the
// session is gone server-side (expired, or revoked after reuse), so the
// cache is cleared.
func (a *App) rotate(ctx context.Context, s *client.Session) (*client.Session, error) {
	pair, err := a.accounts.Refresh(ctx, s.RefreshToken)
	if err != nil {
		if errors.Is(err, client.ErrForbidden) {
			_ = a.cache.Clear()
			return nil, fmt.Errorf("%w; sign in again", err)
		}
		return nil, err
	}

	if err := a.save(s.Username, pair); err != nil {
		return nil, err
	}
	return a.cache.Load()
}

func (a *App) Logout(ctx context.Context) error {
	s, err := a.cache.Load()
	if err != nil {
		return err
	}

	n, err := a.accounts.Logout(ctx, s.AccessToken)
	if err != nil && errors.Is(err, client.ErrUnauthorized) && strings.Contains(err.Error(), common.MsgAccessTokenExpired) {
		// access token expired: refresh once and retry
		if s, err = a.rotate(ctx, s); err != nil {
			return err
		}
		n, err = a.accounts.Logout(ctx, s.AccessToken)
	}
	if err != nil {
		return err
	}

	if err := a.cache.Clear(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed out, %d session(s) revoked\n", n)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	grpcStatus, err := a.accounts.Health(ctx)
	if err != nil {
		grpcStatus = err.Error()
	}

	httpStatus, err := netx.CheckHealth(ctx, a.httpClient, a.config.HealthURL)
	if err != nil {
		httpStatus = err.Error()
	}

	fmt.Fprintf(a.out, "gRPC %s: %s\n", a.config.ServerEndpointAddr, grpcStatus)
	fmt.Fprintf(a.out, "HTTP %s: %s\n", a.config.HealthURL, httpStatus)

	s, err := a.cache.Load()
	switch {
	case errors.Is(err, client.ErrNotSignedIn):
		fmt.Fprintln(a.out, "Not signed in")
	case err != nil:
		return err
	default:
		fmt.Fprintf(a.out, "Signed in as %s since %s\n", s.Username, s.SavedAt.Format(time.RFC3339))
	}
	return nil
}
