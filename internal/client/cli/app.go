package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
)

// Accounts is the server surface the commands use.
type Accounts interface {
	Register(ctx context.Context, req *api.RegisterRequest) (string, error)
	SignIn(ctx context.Context, username, password string) (*api.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, error)
	Logout(ctx context.Context, accessToken string) (int64, error)
	Health(ctx context.Context) (string, error)
}

// Cache holds the signed-in session between invocations.
type Cache interface {
	Save(s *client.Session) error
	Load() (*client.Session, error)
	Clear() error
}

var ErrUnknownCommand = errors.New("unknown command")

type App struct {
	config     *config.Config
	accounts   Accounts
	cache      Cache
	httpClient *http.Client
	reader     *bufio.Reader
	out        io.Writer
	closers    []io.Closer
}

func NewApp(c *config.Config) (*App, error) {

	cache, err := client.OpenTokenCache(c.TokenCachePath)
	if err != nil {
		return nil, err
	}

	accounts, err := client.NewGRPCClient(c.ServerEndpointAddr, client.BasicAuthorization(c.BasicUsername, c.BasicPassword), c.RequestTimeout)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}

	return &App{
		config:     c,
		accounts:   accounts,
		cache:      cache,
		httpClient: &http.Client{Timeout: c.RequestTimeout},
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		closers:    []io.Closer{accounts, cache},
	}, nil
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Run executes the subcommand named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.help()
		return nil
	}

	switch args[0] {
	case "help":
		a.help()
		return nil
	case "register":
		return a.Register(ctx)
	case "signin", "login":
		return a.SignIn(ctx)
	case "refresh":
		return a.Refresh(ctx)
	case "logout":
		return a.Logout(ctx)
	case "status":
		return a.Status(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Usage: authkeeper-client [flags] <command>")
	fmt.Fprintln(a.out, "Available commands: register, signin, refresh, logout, status, help")
}
