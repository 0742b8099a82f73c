package config

import (
	"flag"
	"io"
)

// parseFlags applies command-line overrides and returns the arguments that
// follow the flags. -c/-config are accepted here only so that they do not
// stop parsing; the file itself is read by parseJson.
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("authkeeper-client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configFile string
	fs.StringVar(&configFile, "c", "", "path to JSON config file")
	fs.StringVar(&configFile, "config", "", "path to JSON config file")

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.HealthURL, "hu", cfg.HealthURL, "HTTP health probe URL")
	fs.StringVar(&cfg.TokenCachePath, "t", cfg.TokenCachePath, "token cache file")
	fs.StringVar(&cfg.BasicUsername, "u", cfg.BasicUsername, "basic client username")
	fs.StringVar(&cfg.BasicPassword, "p", cfg.BasicPassword, "basic client password")
	fs.DurationVar(&cfg.RequestTimeout, "to", cfg.RequestTimeout, "per-call timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}
