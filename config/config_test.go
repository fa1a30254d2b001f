package config

import (
	"os"
	"testing"
	"time"
)

// chdirTemp runs the test from an empty directory so no stray config.yaml or .env is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	tempDir := t.TempDir()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(originalDir) })
	return tempDir
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		chdirTemp(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.API.BaseURL != "http://127.0.0.1:8000" {
			t.Errorf("API.BaseURL = %s, want http://127.0.0.1:8000", cfg.API.BaseURL)
		}
		if cfg.API.Timeout != 60*time.Second {
			t.Errorf("API.Timeout = %v, want 60s", cfg.API.Timeout)
		}
		if cfg.API.DefaultNumResults != 20 {
			t.Errorf("API.DefaultNumResults = %d, want 20", cfg.API.DefaultNumResults)
		}
		if cfg.API.MaxNumResults != 50 {
			t.Errorf("API.MaxNumResults = %d, want 50", cfg.API.MaxNumResults)
		}
		if cfg.API.Country != "us" || cfg.API.Language != "en" {
			t.Errorf("API locale = %s/%s, want us/en", cfg.API.Country, cfg.API.Language)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
			t.Errorf("Log = %+v, want info/json", cfg.Log)
		}
		if cfg.Sandbox.Port != "8000" {
			t.Errorf("Sandbox.Port = %s, want 8000", cfg.Sandbox.Port)
		}
		if cfg.Sandbox.RateLimit.PerMinute != 60 || cfg.Sandbox.RateLimit.Burst != 10 {
			t.Errorf("Sandbox.RateLimit = %+v, want 60/10", cfg.Sandbox.RateLimit)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("SHOPKIT_API_BASE_URL", "https://shop.example.com")
		t.Setenv("SHOPKIT_API_TIMEOUT", "15s")
		t.Setenv("SHOPKIT_API_MAX_NUM_RESULTS", "30")
		t.Setenv("SHOPKIT_API_DEFAULT_NUM_RESULTS", "10")
		t.Setenv("SHOPKIT_LOG_LEVEL", "debug")
		t.Setenv("SHOPKIT_LOG_FORMAT", "console")
		t.Setenv("SHOPKIT_SANDBOX_PORT", "9090")
		t.Setenv("SHOPKIT_SANDBOX_RATE_LIMIT_PER_MINUTE", "5")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.API.BaseURL != "https://shop.example.com" {
			t.Errorf("API.BaseURL = %s, want https://shop.example.com", cfg.API.BaseURL)
		}
		if cfg.API.Timeout != 15*time.Second {
			t.Errorf("API.Timeout = %v, want 15s", cfg.API.Timeout)
		}
		if cfg.API.MaxNumResults != 30 || cfg.API.DefaultNumResults != 10 {
			t.Errorf("API num results = %d/%d, want 10/30", cfg.API.DefaultNumResults, cfg.API.MaxNumResults)
		}
		if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
			t.Errorf("Log = %+v, want debug/console", cfg.Log)
		}
		if cfg.Sandbox.Port != "9090" {
			t.Errorf("Sandbox.Port = %s, want 9090", cfg.Sandbox.Port)
		}
		if cfg.Sandbox.RateLimit.PerMinute != 5 {
			t.Errorf("Sandbox.RateLimit.PerMinute = %d, want 5", cfg.Sandbox.RateLimit.PerMinute)
		}
	})

	t.Run("reads config.yaml from working directory", func(t *testing.T) {
		dir := chdirTemp(t)
		yaml := "api:\n  base_url: https://yaml.example.com\n  timeout: 5s\n"
		if err := os.WriteFile(dir+"/config.yaml", []byte(yaml), 0o644); err != nil {
			t.Fatalf("write config.yaml: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.API.BaseURL != "https://yaml.example.com" {
			t.Errorf("API.BaseURL = %s, want https://yaml.example.com", cfg.API.BaseURL)
		}
		if cfg.API.Timeout != 5*time.Second {
			t.Errorf("API.Timeout = %v, want 5s", cfg.API.Timeout)
		}
	})

	t.Run("fails validation for relative base url", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("SHOPKIT_API_BASE_URL", "shop.example.com")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for relative base url")
		}
	})

	t.Run("fails validation for unknown log format", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("SHOPKIT_LOG_FORMAT", "xml")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for invalid log format")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		chdirTemp(t)

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		chdirTemp(t)

		envContent := `
# Comment line
SHOPKIT_TEST_VAR_1=value1

SHOPKIT_TEST_VAR_2=value2
# SHOPKIT_TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0o644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		t.Setenv("SHOPKIT_TEST_VAR_1", "")
		os.Unsetenv("SHOPKIT_TEST_VAR_1")
		t.Setenv("SHOPKIT_TEST_VAR_2", "")
		os.Unsetenv("SHOPKIT_TEST_VAR_2")

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("SHOPKIT_TEST_VAR_1") != "value1" {
			t.Errorf("SHOPKIT_TEST_VAR_1 = %s, want value1", os.Getenv("SHOPKIT_TEST_VAR_1"))
		}
		if os.Getenv("SHOPKIT_TEST_VAR_2") != "value2" {
			t.Errorf("SHOPKIT_TEST_VAR_2 = %s, want value2", os.Getenv("SHOPKIT_TEST_VAR_2"))
		}
		if os.Getenv("SHOPKIT_TEST_COMMENTED") != "" {
			t.Errorf("SHOPKIT_TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		chdirTemp(t)

		if err := os.WriteFile(".env", []byte("SHOPKIT_TEST_KEEP=from_file\n"), 0o644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		t.Setenv("SHOPKIT_TEST_KEEP", "from_env")

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}
		if got := os.Getenv("SHOPKIT_TEST_KEEP"); got != "from_env" {
			t.Errorf("SHOPKIT_TEST_KEEP = %s, want from_env", got)
		}
	})
}

func validConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://shop.example.com",
			Timeout:           time.Minute,
			DefaultNumResults: 20,
			MaxNumResults:     50,
		},
		Log:     LogConfig{Level: "info", Format: "json"},
		Sandbox: SandboxConfig{RateLimit: RateLimitConfig{PerMinute: 60, Burst: 10}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "validates successfully with all required fields", mutate: func(*Config) {}},
		{name: "fails when base url is empty", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: true},
		{name: "fails for non-http scheme", mutate: func(c *Config) { c.API.BaseURL = "ftp://shop.example.com" }, wantErr: true},
		{name: "fails for zero timeout", mutate: func(c *Config) { c.API.Timeout = 0 }, wantErr: true},
		{name: "fails when max results above 100", mutate: func(c *Config) { c.API.MaxNumResults = 101 }, wantErr: true},
		{name: "fails when default exceeds max", mutate: func(c *Config) { c.API.DefaultNumResults = 60 }, wantErr: true},
		{name: "fails for unknown log format", mutate: func(c *Config) { c.Log.Format = "text" }, wantErr: true},
		{name: "fails for zero burst", mutate: func(c *Config) { c.Sandbox.RateLimit.Burst = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
