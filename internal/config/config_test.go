package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "unit-test-secret-32-characters!!")
	os.Setenv("DB_PASSWORD", "test")
	t.Cleanup(os.Clearenv)
}

func TestLoad_LockoutDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Lockout.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts: got %d, want 5", cfg.Lockout.MaxFailedAttempts)
	}
	if cfg.Lockout.Window != 15*time.Minute {
		t.Errorf("Window: got %v, want 15m", cfg.Lockout.Window)
	}
	if cfg.Auth.LoginPath != "/api/auth/token" {
		t.Errorf("LoginPath: got %q, want /api/auth/token", cfg.Auth.LoginPath)
	}
}

func TestLoad_LockoutCustomValues(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("MAX_FAILED_LOGIN_ATTEMPTS", "3")
	os.Setenv("FAILED_LOGIN_ATTEMPT_TTL", "30m")
	os.Setenv("LOGIN_PATH", "/v2/auth/login")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Lockout.MaxFailedAttempts != 3 {
		t.Errorf("MaxFailedAttempts: got %d, want 3", cfg.Lockout.MaxFailedAttempts)
	}
	if cfg.Lockout.Window != 30*time.Minute {
		t.Errorf("Window: got %v, want 30m", cfg.Lockout.Window)
	}
	if cfg.Auth.LoginPath != "/v2/auth/login" {
		t.Errorf("LoginPath: got %q, want /v2/auth/login", cfg.Auth.LoginPath)
	}
}

func TestLoad_InvalidMaxAttemptsRejected(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("MAX_FAILED_LOGIN_ATTEMPTS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for MAX_FAILED_LOGIN_ATTEMPTS=0")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Setenv("DB_PASSWORD", "test")
	t.Cleanup(os.Clearenv)

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing JWT_SECRET")
	}
}

func TestLoad_WeakJWTSecretRejected(t *testing.T) {
	os.Setenv("JWT_SECRET", "short")
	os.Setenv("DB_PASSWORD", "test")
	t.Cleanup(os.Clearenv)

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for short JWT_SECRET")
	}
}

func TestLoad_CookieDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Cookie.Name != "access" {
		t.Errorf("Cookie.Name: got %q, want access", cfg.Cookie.Name)
	}
	if !cfg.Cookie.HTTPOnly {
		t.Error("Cookie.HTTPOnly: got false, want true")
	}
	if cfg.Cookie.SameSite != "lax" {
		t.Errorf("Cookie.SameSite: got %q, want lax", cfg.Cookie.SameSite)
	}
	// Development defaults to an insecure cookie for local HTTP.
	if cfg.Cookie.Secure {
		t.Error("Cookie.Secure: got true, want false in development")
	}
}
