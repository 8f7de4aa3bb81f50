// Package file persists settings as nested TOML tables in config.toml,
// rewriting the whole file atomically on every update.
package file
