package config

import "testing"

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"ACCESS_TOKEN_MAX_AGE", "REFRESH_TOKEN_MAX_AGE", "DB_AUTO_MIGRATE",
		"SERVER_PORT", "DB_SSLMODE", "S3_REGION", "LOG_LEVEL", "DB_HOST", "DB_PORT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.AccessTokenMaxAge != 900 {
		t.Errorf("AccessTokenMaxAge = %d, want 900", cfg.AccessTokenMaxAge)
	}
	if cfg.RefreshTokenMaxAge != 2592000 {
		t.Errorf("RefreshTokenMaxAge = %d, want 2592000", cfg.RefreshTokenMaxAge)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DBAutoMigrate {
		t.Error("DBAutoMigrate should default to false")
	}
	if cfg.DBSSLMode != "require" {
		t.Errorf("DBSSLMode = %q, want require", cfg.DBSSLMode)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_MAX_AGE", "60")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.AccessTokenMaxAge != 60 {
		t.Errorf("AccessTokenMaxAge = %d, want 60", cfg.AccessTokenMaxAge)
	}
	if !cfg.DBAutoMigrate {
		t.Error("DBAutoMigrate should be true")
	}
	if cfg.ServerPort != "9000" {
		t.Errorf("ServerPort = %q, want 9000", cfg.ServerPort)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
}

func TestStorageEnabled(t *testing.T) {
	cfg := &Config{}
	if cfg.StorageEnabled() {
		t.Error("empty config should not enable storage")
	}

	cfg = &Config{
		S3AccessKeyID:     "key",
		S3SecretAccessKey: "secret",
		S3Bucket:          "bucket",
		S3PublicURL:       "https://cdn.example.com",
	}
	if !cfg.StorageEnabled() {
		t.Error("complete config should enable storage")
	}
}
