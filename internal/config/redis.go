package config

import (
	"os"
	"strconv"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GetRedisConfig resolves the Redis connection settings, preferring
// environment variables over the loaded config file.
func GetRedisConfig() RedisConfig {
	cfg := RedisConfig{
		Addr: "localhost:6379",
	}

	if instance != nil {
		if instance.Redis.Addr != "" {
			cfg.Addr = instance.Redis.Addr
		}
		cfg.Password = instance.Redis.Password
		cfg.DB = instance.Redis.DB
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsed, err := strconv.Atoi(dbStr); err == nil {
			cfg.DB = parsed
		}
	}

	return cfg
}
