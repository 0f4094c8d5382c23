// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: values
// are read from the process environment (with an optional .env file in the
// working directory) and parsed into any Go struct using `env:` field tags.
// Each configuration type is parsed at most once per process; subsequent
// Load calls return the cached copy, which keeps per-package Config structs
// cheap to request from anywhere.
package config
