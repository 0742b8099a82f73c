package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags applies command-line overrides.
//
// Supported flags:
//
//	-a string     gRPC bind address (e.g. ":50051")
//	-l string     HTTP bind address (e.g. ":8080")
//	-s string     storage driver: postgres | sqlite
//	-d string     database DSN
//	-ts string    token store driver: sql | redis
//	-r string     Redis address
//	-ak string    access token signing key
//	-rk string    refresh token signing key
//	-at duration  access token lifetime
//	-rt duration  refresh token lifetime
//	-lf string    log format: json | text | zerolog
//	-ll string    log level
//	-ev string    events driver: "" | kafka | rabbitmq
//
// Arguments that do not belong to this set (-c/-config included) are
// filtered out first.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, "-a", "-l", "-s", "-d", "-ts", "-r", "-ak", "-rk", "-at", "-rt", "-lf", "-ll", "-ev")

	fs := flag.NewFlagSet("authkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "l", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.StorageDriver, "s", config.StorageDriver, "storage driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TokenStoreDriver, "ts", config.TokenStoreDriver, "token store driver")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.AccessTokenKey, "ak", config.AccessTokenKey, "access token key")
	fs.StringVar(&config.RefreshTokenKey, "rk", config.RefreshTokenKey, "refresh token key")
	fs.DurationVar(&config.AccessTokenLifetime, "at", config.AccessTokenLifetime, "access token lifetime")
	fs.DurationVar(&config.RefreshTokenLifetime, "rt", config.RefreshTokenLifetime, "refresh token lifetime")
	fs.StringVar(&config.LogFormat, "lf", config.LogFormat, "log format")
	fs.StringVar(&config.LogLevel, "ll", config.LogLevel, "log level")
	fs.StringVar(&config.EventsDriver, "ev", config.EventsDriver, "events driver")

	return fs.Parse(args)
}
