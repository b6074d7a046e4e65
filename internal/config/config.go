// Package config loads server settings from the environment with sane
// defaults, so a bare `inkwell-server` starts without any setup.
package config

import (
	"os"
	"strconv"
)

const (
	DefaultPort           = "8080"
	DefaultRoomID         = "lobby"
	DefaultMaxMessageSize = 1024 * 1024
	DefaultRatePerSecond  = 100
	DefaultRateBurst      = 200
)

// RateLimit holds per-connection message rate parameters.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

// Config holds the relay server settings.
type Config struct {
	Port           string
	DefaultRoom    string
	MaxMessageSize int64
	RateLimit      RateLimit
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:           DefaultPort,
		DefaultRoom:    DefaultRoomID,
		MaxMessageSize: DefaultMaxMessageSize,
		RateLimit: RateLimit{
			PerSecond: DefaultRatePerSecond,
			Burst:     DefaultRateBurst,
		},
	}
}

// FromEnv builds a Config from environment variables, falling back to the
// defaults for anything unset or unparsable. It never fails.
func FromEnv() Config {
	cfg := Default()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if room := os.Getenv("INKWELL_DEFAULT_ROOM"); room != "" {
		cfg.DefaultRoom = room
	}
	if size := os.Getenv("INKWELL_MAX_MESSAGE_SIZE"); size != "" {
		cfg.MaxMessageSize = parseInt64(size, cfg.MaxMessageSize)
	}
	if rate := os.Getenv("INKWELL_RATE_PER_SECOND"); rate != "" {
		cfg.RateLimit.PerSecond = parseFloat(rate, cfg.RateLimit.PerSecond)
	}
	if burst := os.Getenv("INKWELL_RATE_BURST"); burst != "" {
		cfg.RateLimit.Burst = parseInt(burst, cfg.RateLimit.Burst)
	}

	return cfg
}

func parseInt64(value string, fallback int64) int64 {
	if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}

func parseFloat(value string, fallback float64) float64 {
	if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}
