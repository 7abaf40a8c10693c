package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	instance *Config
	once     sync.Once
)

// Config - can/will add more later
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Forecast struct {
		HorizonHours   float64 `yaml:"horizon_hours"`
		MinSamples     int     `yaml:"min_samples"`
		MinLeakSamples int     `yaml:"min_leak_samples"`
		HistoricalDays int     `yaml:"historical_days"`
	} `yaml:"forecast"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		// .env values become visible to the env-based helpers below
		godotenv.Load()

		instance = &Config{}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file %s: %w", configPath, readErr)
			return
		}

		if parseErr := yaml.Unmarshal(data, instance); parseErr != nil {
			err = fmt.Errorf("failed to parse config: %w", parseErr)
			return
		}

		instance.applyDefaults()

		if validateErr := instance.validate(); validateErr != nil {
			err = validateErr
			return
		}
	})

	return instance, err
}

func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Forecast.HorizonHours == 0 {
		c.Forecast.HorizonHours = 24
	}
	if c.Forecast.MinSamples == 0 {
		c.Forecast.MinSamples = 10
	}
	if c.Forecast.MinLeakSamples == 0 {
		c.Forecast.MinLeakSamples = 20
	}
	if c.Forecast.HistoricalDays == 0 {
		c.Forecast.HistoricalDays = 30
	}
}

func (c *Config) validate() error {
	if c.Forecast.HorizonHours < 0 {
		return fmt.Errorf("forecast.horizon_hours cannot be negative")
	}
	if c.Forecast.MinSamples < 2 {
		return fmt.Errorf("forecast.min_samples must be at least 2, got %d", c.Forecast.MinSamples)
	}
	if c.Forecast.MinLeakSamples < 2 {
		return fmt.Errorf("forecast.min_leak_samples must be at least 2, got %d", c.Forecast.MinLeakSamples)
	}
	return nil
}
