package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("default port: %d", cfg.Port)
	}
	if cfg.MongoDB != "civicpulse" {
		t.Errorf("default db name: %q", cfg.MongoDB)
	}
	if cfg.UploadDir != "./uploads" {
		t.Errorf("default upload dir: %q", cfg.UploadDir)
	}
	if len(cfg.AllowedOrigins) == 0 {
		t.Error("expected default allowed origins")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MONGO_DB", "civicpulse_test")
	t.Setenv("MAX_UPLOAD_MB", "16")
	t.Setenv("FIREBASE_CREDENTIALS", "/etc/civicpulse/firebase.json")

	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("port override: %d", cfg.Port)
	}
	if cfg.MongoDB != "civicpulse_test" {
		t.Errorf("db override: %q", cfg.MongoDB)
	}
	if cfg.MaxUploadMB != 16 {
		t.Errorf("upload override: %d", cfg.MaxUploadMB)
	}
	if cfg.FirebaseCredentials != "/etc/civicpulse/firebase.json" {
		t.Errorf("firebase credentials override: %q", cfg.FirebaseCredentials)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("garbage PORT should fall back: %d", cfg.Port)
	}
}
