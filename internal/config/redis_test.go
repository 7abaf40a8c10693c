package config

import (
	"os"
	"testing"
)

func stashRedisEnv(t *testing.T) {
	t.Helper()

	envVars := []string{"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB"}
	saved := make(map[string]string)
	for _, key := range envVars {
		saved[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	t.Cleanup(func() {
		for key, val := range saved {
			if val != "" {
				os.Setenv(key, val)
			} else {
				os.Unsetenv(key)
			}
		}
	})
}

func TestGetRedisConfig_FromEnvVars(t *testing.T) {
	stashRedisEnv(t)
	resetConfig()

	os.Setenv("REDIS_ADDR", "redis.example.com:6380")
	os.Setenv("REDIS_PASSWORD", "secret")
	os.Setenv("REDIS_DB", "3")

	cfg := GetRedisConfig()

	if cfg.Addr != "redis.example.com:6380" {
		t.Errorf("Expected addr 'redis.example.com:6380', got '%s'", cfg.Addr)
	}
	if cfg.Password != "secret" {
		t.Errorf("Expected password 'secret', got '%s'", cfg.Password)
	}
	if cfg.DB != 3 {
		t.Errorf("Expected DB 3, got %d", cfg.DB)
	}
}

func TestGetRedisConfig_Defaults(t *testing.T) {
	stashRedisEnv(t)
	resetConfig()

	cfg := GetRedisConfig()

	if cfg.Addr != "localhost:6379" {
		t.Errorf("Expected default addr 'localhost:6379', got '%s'", cfg.Addr)
	}
	if cfg.Password != "" {
		t.Errorf("Expected empty password, got '%s'", cfg.Password)
	}
	if cfg.DB != 0 {
		t.Errorf("Expected DB 0, got %d", cfg.DB)
	}
}

func TestGetRedisConfig_FromLoadedConfig(t *testing.T) {
	stashRedisEnv(t)

	path := writeTempConfig(t, `redis:
  addr: "configured:6379"
  password: "yamlpass"
  db: 2
`)

	resetConfig()
	if _, err := Load(path); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	cfg := GetRedisConfig()

	if cfg.Addr != "configured:6379" {
		t.Errorf("Expected addr 'configured:6379', got '%s'", cfg.Addr)
	}
	if cfg.Password != "yamlpass" {
		t.Errorf("Expected password 'yamlpass', got '%s'", cfg.Password)
	}
	if cfg.DB != 2 {
		t.Errorf("Expected DB 2, got %d", cfg.DB)
	}
}

func TestGetRedisConfig_EnvOverridesConfig(t *testing.T) {
	stashRedisEnv(t)

	path := writeTempConfig(t, `redis:
  addr: "configured:6379"
`)

	resetConfig()
	if _, err := Load(path); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	os.Setenv("REDIS_ADDR", "env:6379")

	cfg := GetRedisConfig()
	if cfg.Addr != "env:6379" {
		t.Errorf("Expected env addr 'env:6379', got '%s'", cfg.Addr)
	}
}

func TestGetRedisConfig_InvalidDB(t *testing.T) {
	stashRedisEnv(t)
	resetConfig()

	os.Setenv("REDIS_DB", "not-a-number")

	cfg := GetRedisConfig()
	if cfg.DB != 0 {
		t.Errorf("Expected DB 0 for invalid REDIS_DB, got %d", cfg.DB)
	}
}
