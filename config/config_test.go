package config

import (
	"os"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	configContent := `
server:
  port: 9090
  frontend_url: "http://app.test"
log:
  level: "debug"
  format: "json"
auth:
  jwt_secret: "test-secret"
  token_expire_hours: 48
store:
  driver: "memory"
  sqlite_path: "/tmp/test.db"
minio:
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "contracts"
  expire_days: 14
relay:
  max_room_size: 3
  max_message_bytes: 1024
  messages_per_second: 10
  require_auth: true
  allowed_origins: ["http://app.test"]
rate_limit:
  requests: 20
  window_seconds: 30
users:
  - name: "Admin"
    email: "admin@legalease.test"
    password: "secret"
    role: "admin"
`
	cfg, err := Load(writeTempConfig(t, configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.FrontendURL != "http://app.test" {
		t.Errorf("Expected frontend url http://app.test, got %s", cfg.Server.FrontendURL)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config %+v", cfg.Log)
	}
	if cfg.Auth.TokenExpireHours != 48 {
		t.Errorf("Expected token_expire_hours 48, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("Expected driver memory, got %s", cfg.Store.Driver)
	}
	if !cfg.Minio.Enabled() {
		t.Error("Expected minio to be enabled")
	}
	if cfg.Minio.ExpireDays != 14 {
		t.Errorf("Expected expire_days 14, got %d", cfg.Minio.ExpireDays)
	}
	if cfg.Relay.MaxRoomSize != 3 || cfg.Relay.MaxMessageBytes != 1024 || !cfg.Relay.RequireAuth {
		t.Errorf("Unexpected relay config %+v", cfg.Relay)
	}
	if len(cfg.Relay.AllowedOrigins) != 1 {
		t.Errorf("Expected 1 allowed origin, got %d", len(cfg.Relay.AllowedOrigins))
	}
	if cfg.RateLimit.Requests != 20 || cfg.RateLimit.WindowSeconds != 30 {
		t.Errorf("Unexpected rate limit config %+v", cfg.RateLimit)
	}
	if len(cfg.Users) != 1 || cfg.Users[0].Role != "admin" {
		t.Errorf("Unexpected users %+v", cfg.Users)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "auth:\n  jwt_secret: \"x\"\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Expected default port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Server.FrontendURL != "http://localhost:5173" {
		t.Errorf("Expected default frontend url, got %s", cfg.Server.FrontendURL)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Expected default log format text, got %s", cfg.Log.Format)
	}
	if cfg.Auth.TokenExpireHours != 24 {
		t.Errorf("Expected default token_expire_hours 24, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.SQLitePath != "legalease.db" {
		t.Errorf("Unexpected store defaults %+v", cfg.Store)
	}
	if cfg.Minio.Enabled() {
		t.Error("Expected minio to be disabled without endpoint")
	}
	if cfg.Relay.MaxRoomSize != 2 {
		t.Errorf("Expected default max_room_size 2, got %d", cfg.Relay.MaxRoomSize)
	}
	if cfg.Relay.MaxMessageBytes != 64*1024 {
		t.Errorf("Expected default max_message_bytes 65536, got %d", cfg.Relay.MaxMessageBytes)
	}
	if cfg.RateLimit.Requests != 100 || cfg.RateLimit.WindowSeconds != 60 {
		t.Errorf("Unexpected rate limit defaults %+v", cfg.RateLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LEGALEASE_JWT_SECRET", "from-env")
	t.Setenv("LEGALEASE_MONGO_URI", "mongodb://env:27017")

	cfg, err := Load(writeTempConfig(t, "auth:\n  jwt_secret: \"from-file\"\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("Expected jwt secret from env, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Store.MongoURI != "mongodb://env:27017" {
		t.Errorf("Expected mongo uri from env, got %s", cfg.Store.MongoURI)
	}
}

func TestLoadAdminPasswordFromEnv(t *testing.T) {
	t.Setenv("LEGALEASE_ADMIN_PASSWORD", "s3cret-from-env")

	cfg, err := Load(writeTempConfig(t, `users:
  - name: Admin
    email: admin@example.com
    role: admin
  - name: Fixed
    email: fixed@example.com
    password: from-file
    role: admin
  - name: Client
    email: client@example.com
    role: client
`))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	want := []string{"s3cret-from-env", "from-file", ""}
	for i, u := range cfg.Users {
		if u.Password != want[i] {
			t.Errorf("User %s: expected password %q, got %q", u.Email, want[i], u.Password)
		}
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeTempConfig(t, "invalid: yaml: content:"))
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}
