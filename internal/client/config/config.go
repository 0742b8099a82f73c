package config

import "time"

// Config holds runtime settings for the authkeeper CLI.
type Config struct {
	ServerEndpointAddr string
	HealthURL          string
	TokenCachePath     string
	BasicUsername      string
	BasicPassword      string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with defaults matching a local server.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.HealthURL = "http://127.0.0.1:8080/healthz"
	c.TokenCachePath = "authkeeper-client.db"
	c.BasicUsername = "authkeeper"
	c.BasicPassword = "authkeeper"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig builds a Config from defaults, the JSON file and flags in args,
// and returns the positional arguments left after the flags.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, nil, err
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
