// Package driving holds the use-case interfaces the CLI and TUI call.
// Services in internal/core/services satisfy them.
package driving
