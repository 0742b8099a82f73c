// Package config loads runtime configuration for the authkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the gRPC endpoint
//	-hu string    URL of the HTTP health probe
//	-t string     path of the token cache file
//	-u string     basic client username
//	-p string     basic client password
//	-to duration  per-call timeout
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "health_url": "http://127.0.0.1:8080/healthz",
//	  "token_cache_path": "authkeeper-client.db",
//	  "basic_username": "authkeeper",
//	  "basic_password": "authkeeper",
//	  "request_timeout": "10s"
//	}
//
// Everything after the flags is returned to the caller as the subcommand
// and its arguments.
package config
