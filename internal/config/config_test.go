package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DefaultRoom != "lobby" {
		t.Errorf("Expected default room 'lobby', got %q", cfg.DefaultRoom)
	}
	if cfg.RateLimit.PerSecond <= 0 || cfg.RateLimit.Burst <= 0 {
		t.Error("Rate limit defaults should be positive")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("INKWELL_DEFAULT_ROOM", "workspace")
	t.Setenv("INKWELL_RATE_BURST", "50")

	cfg := FromEnv()

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %q", cfg.Port)
	}
	if cfg.DefaultRoom != "workspace" {
		t.Errorf("Expected room 'workspace', got %q", cfg.DefaultRoom)
	}
	if cfg.RateLimit.Burst != 50 {
		t.Errorf("Expected burst 50, got %d", cfg.RateLimit.Burst)
	}
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("INKWELL_MAX_MESSAGE_SIZE", "not-a-number")
	t.Setenv("INKWELL_RATE_PER_SECOND", "-5")

	cfg := FromEnv()

	if cfg.MaxMessageSize != DefaultMaxMessageSize {
		t.Errorf("Bad size should fall back to default, got %d", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.PerSecond != DefaultRatePerSecond {
		t.Errorf("Negative rate should fall back to default, got %f", cfg.RateLimit.PerSecond)
	}
}
