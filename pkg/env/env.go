package env

import "os"

// Get returns the environment variable value, or fallback when unset. Kept
// below pkg/config so the logger can read LOG_FORMAT before config loads.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
