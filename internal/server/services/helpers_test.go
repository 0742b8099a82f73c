package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/events"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice         = "alice_1234"
	alicePassword = "Passw0rd1"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// newSQLiteSessions returns a SessionManager over a fresh in-memory SQLite
// database.
func newSQLiteSessions(t *testing.T, cfg *config.Config, opts ...Option) (*SessionManager, repomanager.RepositoryManager) {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	m, err := repomanager.Open(ctx, repomanager.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	require.NoError(t, m.RunMigrations(ctx))

	return NewSessionManager(m, cfg, opts...), m
}

func registerAlice(t *testing.T, s *SessionManager) {
	t.Helper()
	status, err := s.Register(context.Background(), RegisterInput{
		GivenName:      "Alice",
		LastName:       "Liddell",
		ContactNumber:  "09123456789",
		ContactEmail:   "alice@example.com",
		Username:       alice,
		Password:       alicePassword,
		ProfilePicture: "https://example.com/alice.png",
	})
	require.NoError(t, err)
	require.Equal(t, "ACCOUNT_REGISTERED", status)
}

func requireAppError(t *testing.T, err error, kind common.Kind, msg string) {
	t.Helper()
	var e *common.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, kind, e.Kind, "kind")
	assert.Equal(t, msg, e.Message, "message")
}
