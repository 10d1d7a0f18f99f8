package env

import (
	"os"
	"strconv"
)

// Str returns the value of the environment variable key, or fallback if unset/empty.
func Str(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

// Int returns the integer value of the environment variable key, or fallback.
func Int(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

// Float returns the float value of the environment variable key, or fallback.
func Float(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return f
}
