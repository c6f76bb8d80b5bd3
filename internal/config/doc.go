// Package config loads the bookwatch YAML configuration.
//
// ${VAR} references are expanded from the environment, which may be
// seeded from a .env file first. Missing optional values get defaults;
// Validate rejects the rest.
package config
