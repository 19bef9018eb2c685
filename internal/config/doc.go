// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Every field is optional; a missing file section falls back to the
// blackjack endpoint with a fixed one second reconnect delay.
package config
