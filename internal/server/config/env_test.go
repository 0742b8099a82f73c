package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := parseEnv(cfg, envOf(map[string]string{
		EnvBasicUsername:        "basic-user",
		EnvBasicPassword:        "basic-pass",
		EnvAccessTokenKey:       "acc",
		EnvRefreshTokenKey:      "ref",
		EnvRefreshTokenLifetime: "720h",
		EnvCookieMaxAge:         "1h",
		EnvRedisDB:              "3",
		EnvKafkaBrokers:         " k1:9092, ,k2:9092 ",
		EnvTokenIssuer:          "issuer",
		EnvLogFormat:            "zerolog",
	}))
	require.NoError(t, err)

	assert.Equal(t, "basic-user", cfg.BasicAuthUsername)
	assert.Equal(t, "basic-pass", cfg.BasicAuthPassword)
	assert.Equal(t, "acc", cfg.AccessTokenKey)
	assert.Equal(t, "ref", cfg.RefreshTokenKey)
	assert.Equal(t, 720*time.Hour, cfg.RefreshTokenLifetime)
	assert.Equal(t, time.Hour, cfg.CookieMaxAge)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "issuer", cfg.TokenIssuer)
	assert.Equal(t, "zerolog", cfg.LogFormat)
	assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
}

func Test_parseEnv_EmptyValueOverrides(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.NoError(t, parseEnv(cfg, envOf(map[string]string{EnvEventsDriver: ""})))
	assert.Equal(t, "", cfg.EventsDriver)
}

func Test_parseEnv_Errors(t *testing.T) {
	assert.ErrorContains(t, parseEnv(&Config{}, envOf(map[string]string{EnvRedisDB: "one"})), EnvRedisDB)
	assert.ErrorContains(t, parseEnv(&Config{}, envOf(map[string]string{EnvAccessTokenLifetime: "15"})), EnvAccessTokenLifetime)
}
