package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := Load()

	if cfg.AppPort != "8080" {
		t.Fatalf("AppPort = %q; want 8080", cfg.AppPort)
	}
	if cfg.AllowedOrigin != "" {
		t.Fatalf("AllowedOrigin = %q; want empty (any origin)", cfg.AllowedOrigin)
	}
	if cfg.RoomMaxUsers != 10 || cfg.SessionTimeSeconds != 120 || cfg.StartRounds != 5 {
		t.Fatalf("room defaults = %d/%d/%d; want 10/120/5",
			cfg.RoomMaxUsers, cfg.SessionTimeSeconds, cfg.StartRounds)
	}
	if cfg.APIRateLimit != 60 || cfg.APIRateWindowSeconds != 60 {
		t.Fatalf("rate limit = %d/%ds; want 60/60s", cfg.APIRateLimit, cfg.APIRateWindowSeconds)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ALLOWED_ORIGIN", "https://game.example.com")
	t.Setenv("SESSION_TIME_SECONDS", "60")
	t.Setenv("LOG_JSON", "true")

	cfg := Load()

	if cfg.AppPort != "9090" {
		t.Fatalf("AppPort = %q; want 9090", cfg.AppPort)
	}
	if cfg.AllowedOrigin != "https://game.example.com" {
		t.Fatalf("AllowedOrigin = %q", cfg.AllowedOrigin)
	}
	if cfg.SessionTimeSeconds != 60 {
		t.Fatalf("SessionTimeSeconds = %d; want 60", cfg.SessionTimeSeconds)
	}
	if !cfg.LogJSON {
		t.Fatal("LogJSON not picked up")
	}
}
