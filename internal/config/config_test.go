package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsToDegradedMode(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY_ID", "")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Live() {
		t.Fatalf("expected degraded mode without credentials")
	}
	if cfg.Intake.MaxResumeBytes != 5*1024*1024 {
		t.Fatalf("unexpected max resume bytes %d", cfg.Intake.MaxResumeBytes)
	}
	if cfg.Intake.MockDelay != 1500*time.Millisecond {
		t.Fatalf("unexpected mock delay %s", cfg.Intake.MockDelay)
	}
	if cfg.MinIO.Bucket != "resumes" {
		t.Fatalf("unexpected bucket %q", cfg.MinIO.Bucket)
	}
	want := []string{".pdf", ".doc", ".docx"}
	if len(cfg.Intake.AllowedExtensions) != len(want) {
		t.Fatalf("unexpected extensions %v", cfg.Intake.AllowedExtensions)
	}
	for i, ext := range want {
		if cfg.Intake.AllowedExtensions[i] != ext {
			t.Fatalf("unexpected extensions %v", cfg.Intake.AllowedExtensions)
		}
	}
}

func TestLoadLiveModeRequiresBothCredentials(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY_ID", "key")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Live() {
		t.Fatalf("a single credential must not enable live mode")
	}

	t.Setenv("MINIO_SECRET_ACCESS_KEY", "secret")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Live() {
		t.Fatalf("expected live mode with both credentials")
	}
}

func TestLoadIgnoresEmptyEnvOverrides(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY_ID", "key")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "secret")
	t.Setenv("MINIO_BUCKET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("empty env should fall back to defaults, got %v", err)
	}
	if cfg.MinIO.Bucket != "resumes" {
		t.Fatalf("unexpected bucket %q", cfg.MinIO.Bucket)
	}
}

func TestNormalizeExtensions(t *testing.T) {
	got := normalizeExtensions([]string{"PDF, .Doc", "", " docx "})
	want := []string{".pdf", ".doc", ".docx"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestValidateRejectsBadIntake(t *testing.T) {
	cfg := Config{
		API:    APIConfig{Port: 8080},
		Intake: IntakeConfig{MaxResumeBytes: 0, AllowedExtensions: []string{".pdf"}, DraftTTL: time.Hour},
	}
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for zero max resume bytes")
	}
}
