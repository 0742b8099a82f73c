// Package server wires the authkeeper components together: storage, the
// token store, security events, profile pictures, the session manager and
// the gRPC and HTTP transports. It also runs the stale-token janitor and
// handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/avatars"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/events"
	"github.com/dmitrijs2005/authkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
)

// logOutput is where the server logs go.
var logOutput io.Writer = os.Stdout

type App struct {
	config    *config.Config
	logger    logging.Logger
	repos     repomanager.RepositoryManager
	publisher events.Publisher
	sessions  *services.SessionManager
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogFormat, c.LogLevel, logOutput)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	repos, err := repomanager.Open(ctx, c.StorageDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	if c.TokenStoreDriver == config.TokenStoreRedis {
		repos, err = withRedisTokens(ctx, repos, c)
		if err != nil {
			return nil, err
		}
	}

	publisher, err := events.New(events.Settings{
		Driver:       c.EventsDriver,
		KafkaBrokers: c.KafkaBrokers,
		KafkaTopic:   c.KafkaTopic,
		RabbitURL:    c.RabbitURL,
		RabbitQueue:  c.RabbitQueue,
	}, logger)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("events init error: %w", err)
	}

	var pictures avatars.Store = avatars.Passthrough{}
	if c.S3Bucket != "" {
		s3store, err := avatars.NewS3Store(ctx, avatars.S3Settings{
			Region:       c.S3Region,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			_ = publisher.Close()
			_ = repos.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		pictures = s3store
	}

	sessions := services.NewSessionManager(repos, c,
		services.WithLogger(logger),
		services.WithPublisher(publisher),
		services.WithAvatars(pictures),
	)

	return &App{config: c, logger: logger, repos: repos, publisher: publisher, sessions: sessions}, nil
}

// withRedisTokens moves the refresh-token store out of SQL into Redis.
func withRedisTokens(ctx context.Context, repos repomanager.RepositoryManager, c *config.Config) (repomanager.RepositoryManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		_ = repos.Close()
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	store := refreshtokens.NewRedisRepository(client, c.RedisPrefix, c.RefreshTokenLifetime+c.PurgeGrace)
	return repomanager.WithTokenStore(repos, store, client), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) gate() auth.BasicGate {
	return auth.BasicGate{Username: app.config.BasicAuthUsername, Password: app.config.BasicAuthPassword}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions, app.gate(), app.config.RequestTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.New(app.config.EndpointAddrHTTP, app.logger, app.sessions, httpapi.Settings{
		Gate:           app.gate(),
		CookieMaxAge:   app.config.CookieMaxAge,
		RequestTimeout: app.config.RequestTimeout,
	})
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// runJanitor purges stale refresh tokens every PurgeInterval until ctx ends.
func (app *App) runJanitor(ctx context.Context) {
	if app.config.PurgeInterval <= 0 {
		return
	}

	ticker := time.NewTicker(app.config.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.purge(ctx)
		}
	}
}

func (app *App) purge(ctx context.Context) {
	n, err := app.sessions.PurgeStale(ctx)
	if err != nil {
		app.logger.Error(ctx, "purge stale refresh tokens failed", "error", err)
		return
	}
	if n > 0 {
		app.logger.Info(ctx, "purged stale refresh tokens", "count", n)
	}
}

// Run serves until a termination signal arrives or ctx is cancelled, then
// releases every resource.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.runJanitor(ctx)
	}()

	wg.Wait()

	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return app.Close()
}

func (app *App) Close() error {
	return errors.Join(app.publisher.Close(), app.repos.Close())
}
