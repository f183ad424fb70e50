// Package config holds the service configuration: defaults, file loading
// (JSON or YAML), and EZRA_* environment overlays.
package config
