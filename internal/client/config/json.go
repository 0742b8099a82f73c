package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	HealthURL          string         `json:"health_url"`
	TokenCachePath     string         `json:"token_cache_path"`
	BasicUsername      string         `json:"basic_username"`
	BasicPassword      string         `json:"basic_password"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the non-empty values of the file named by -c
// or -config.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	for dst, src := range map[*string]string{
		&cfg.ServerEndpointAddr: jc.ServerEndpointAddr,
		&cfg.HealthURL:          jc.HealthURL,
		&cfg.TokenCachePath:     jc.TokenCachePath,
		&cfg.BasicUsername:      jc.BasicUsername,
		&cfg.BasicPassword:      jc.BasicPassword,
	} {
		if src != "" {
			*dst = src
		}
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
