package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres", c.StorageDriver)
	assert.Equal(t, TokenStoreSQL, c.TokenStoreDriver)
	assert.Equal(t, 15*time.Minute, c.AccessTokenLifetime)
	assert.Equal(t, 30*24*time.Hour, c.RefreshTokenLifetime)
	assert.Equal(t, 15*time.Minute, c.CookieMaxAge)
	assert.NotEqual(t, c.AccessTokenKey, c.RefreshTokenKey)
	assert.NoError(t, c.Validate())
}

func TestLoad_NoSourcesGivesDefaults(t *testing.T) {
	c, err := Load(nil, noEnv)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, c)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr_grpc": "json:1",
		"endpoint_addr_http": "json:2",
		"access_token_key":   "json-access",
	})

	env := envOf(map[string]string{
		EnvHTTPAddr:       "env:2",
		EnvAccessTokenKey: "env-access",
	})

	c, err := Load([]string{"-c", path, "-ak", "flag-access"}, env)
	require.NoError(t, err)

	assert.Equal(t, "json:1", c.EndpointAddrGRPC, "json over defaults")
	assert.Equal(t, "env:2", c.EndpointAddrHTTP, "env over json")
	assert.Equal(t, "flag-access", c.AccessTokenKey, "flags over env")
	assert.Equal(t, "refreshTokenKey", c.RefreshTokenKey, "untouched default")
}

func TestLoad_PropagatesErrors(t *testing.T) {
	_, err := Load([]string{"-c", "/does/not/exist.json"}, noEnv)
	assert.ErrorContains(t, err, "read config file")

	_, err = Load(nil, envOf(map[string]string{EnvPurgeInterval: "soon"}))
	assert.ErrorContains(t, err, EnvPurgeInterval)

	_, err = Load([]string{"-at", "forever"}, noEnv)
	assert.Error(t, err)
}

func TestLoad_Validates(t *testing.T) {
	_, err := Load(nil, envOf(map[string]string{
		EnvAccessTokenKey:  "same",
		EnvRefreshTokenKey: "same",
	}))
	assert.ErrorContains(t, err, "access and refresh token keys must differ")

	_, err = Load([]string{"-s", "mysql"}, noEnv)
	assert.ErrorContains(t, err, `unknown storage driver "mysql"`)

	_, err = Load([]string{"-rt", "0s"}, noEnv)
	assert.ErrorContains(t, err, "lifetimes must be positive")

	c, err := Load(nil, envOf(map[string]string{EnvPurgeInterval: "0s", EnvPurgeGrace: "48h"}))
	require.NoError(t, err, "zero interval disables the janitor")
	assert.Zero(t, c.PurgeInterval)
	assert.Equal(t, 48*time.Hour, c.PurgeGrace)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty key", func(c *Config) { c.RefreshTokenKey = "" }, "must be set"},
		{"same keys", func(c *Config) { c.RefreshTokenKey = c.AccessTokenKey }, "must differ"},
		{"zero lifetime", func(c *Config) { c.AccessTokenLifetime = 0 }, "lifetimes must be positive"},
		{"negative purge", func(c *Config) { c.PurgeInterval = -time.Second }, "purge interval"},
		{"negative grace", func(c *Config) { c.PurgeGrace = -time.Second }, "grace must not be negative"},
		{"storage driver", func(c *Config) { c.StorageDriver = "mysql" }, `unknown storage driver "mysql"`},
		{"token store", func(c *Config) { c.TokenStoreDriver = "memcached" }, `unknown token store driver "memcached"`},
		{"events driver", func(c *Config) { c.EventsDriver = "nats" }, `unknown events driver "nats"`},
		{"basic auth", func(c *Config) { c.BasicAuthUsername = "" }, "basic auth username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.ErrorContains(t, c.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_AcceptsAlternativeDrivers(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.StorageDriver = "sqlite"
	c.TokenStoreDriver = TokenStoreRedis
	c.EventsDriver = "rabbitmq"
	assert.NoError(t, c.Validate())
}
