package config

import (
	"os"
	"sync"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	tmpFile.Close()

	return tmpFile.Name()
}

func resetConfig() {
	instance = nil
	once = *new(sync.Once)
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `server:
  addr: ":9090"
forecast:
  horizon_hours: 48
  min_samples: 10
  min_leak_samples: 20
  historical_days: 14
redis:
  addr: "localhost:6379"
  password: ""
  db: 0
`)

	resetConfig()

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected server addr ':9090', got '%s'", cfg.Server.Addr)
	}

	if cfg.Forecast.HorizonHours != 48 {
		t.Errorf("Expected horizon 48, got %v", cfg.Forecast.HorizonHours)
	}

	if cfg.Forecast.HistoricalDays != 14 {
		t.Errorf("Expected 14 historical days, got %d", cfg.Forecast.HistoricalDays)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Expected Redis addr 'localhost:6379', got '%s'", cfg.Redis.Addr)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, `redis:
  addr: "localhost:6379"
`)

	resetConfig()

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr ':8080', got '%s'", cfg.Server.Addr)
	}
	if cfg.Forecast.HorizonHours != 24 {
		t.Errorf("Expected default horizon 24, got %v", cfg.Forecast.HorizonHours)
	}
	if cfg.Forecast.MinSamples != 10 {
		t.Errorf("Expected default min_samples 10, got %d", cfg.Forecast.MinSamples)
	}
	if cfg.Forecast.MinLeakSamples != 20 {
		t.Errorf("Expected default min_leak_samples 20, got %d", cfg.Forecast.MinLeakSamples)
	}
	if cfg.Forecast.HistoricalDays != 30 {
		t.Errorf("Expected default historical_days 30, got %d", cfg.Forecast.HistoricalDays)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "invalid: [yaml: content")

	resetConfig()

	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	resetConfig()

	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestLoad_InvalidMinSamples(t *testing.T) {
	path := writeTempConfig(t, `forecast:
  min_samples: 1
`)

	resetConfig()

	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for min_samples below 2, got nil")
	}
}

func TestGet(t *testing.T) {
	path := writeTempConfig(t, `server:
  addr: ":8081"
`)

	resetConfig()

	if _, err := Load(path); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}

	if cfg.Server.Addr != ":8081" {
		t.Errorf("Expected addr ':8081', got '%s'", cfg.Server.Addr)
	}
}

func TestGet_Panic(t *testing.T) {
	resetConfig()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected Get() to panic when config not loaded")
		}
	}()

	Get()
}
