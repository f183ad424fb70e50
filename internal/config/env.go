package config

import (
	"os"
	"strconv"
)

// FromEnv overlays EZRA_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("EZRA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("EZRA_MAX_SCANS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxScans = n
		}
	}
	if v := os.Getenv("EZRA_CODE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CodeLength = n
		}
	}
	if v := os.Getenv("EZRA_QR_DIR"); v != "" {
		cfg.QRDir = v
	}
	if v := os.Getenv("EZRA_LIST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ListLimit = n
		}
	}
}
