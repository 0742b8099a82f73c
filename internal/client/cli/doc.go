// Package cli implements the authkeeper command-line client: one
// subcommand per invocation (register, signin, refresh, logout, status),
// with the token pair kept in a local cache between runs.
package cli
