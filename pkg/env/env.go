// Package env reads process environment variables with fallbacks, for
// the few lookups that happen before config is loaded.
package env

import "os"

// Get returns the named variable's value, or fallback when it is unset
// or blank.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
