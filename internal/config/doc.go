// Package config loads examprep settings from defaults, an optional
// config.yaml and EXAMPREP_* environment variables, and validates them with
// struct tags before any component starts.
package config
