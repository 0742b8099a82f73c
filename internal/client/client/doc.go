// Package client talks to the authkeeper server on behalf of the CLI and
// keeps the issued token pair in a local bbolt file between invocations.
package client
