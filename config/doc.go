// Package config loads chirp settings from code defaults, an optional YAML
// file, a .env file and CHIRP_* environment variables, in that order.
package config
