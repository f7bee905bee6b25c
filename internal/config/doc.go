// Package config loads the YAML configuration for the doorctl server.
package config
