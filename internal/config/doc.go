// Package config defines the application configuration and loads it from
// environment variables (KST_ prefix) and an optional config.yaml, with
// struct-tag validation.
package config
