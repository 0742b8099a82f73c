package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-l", "127.0.0.1:8081", "-s", "sqlite", "-d", "file:x.db",
				"-ts", "redis", "-r", "redis:6379", "-ak", "acc", "-rk", "ref",
				"-at", "1m", "-rt", "3h", "-lf", "text", "-ll", "debug", "-ev", "kafka",
			},
			expected: &Config{
				EndpointAddrGRPC:     "127.0.0.1:9090",
				EndpointAddrHTTP:     "127.0.0.1:8081",
				StorageDriver:        "sqlite",
				DatabaseDSN:          "file:x.db",
				TokenStoreDriver:     "redis",
				RedisAddr:            "redis:6379",
				AccessTokenKey:       "acc",
				RefreshTokenKey:      "ref",
				AccessTokenLifetime:  time.Minute,
				RefreshTokenLifetime: 3 * time.Hour,
				LogFormat:            "text",
				LogLevel:             "debug",
				EventsDriver:         "kafka",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-c", "cfg.json", "-unknown", "1", "positional", "-a=:1"},
			expected: &Config{EndpointAddrGRPC: ":1"},
		},
		{
			name:    "bad duration",
			args:    []string{"-at", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if diff := cmp.Diff(tt.expected, config); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
