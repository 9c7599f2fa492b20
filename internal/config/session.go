package config

import (
	"fmt"
	"time"
)

type SessionBackend string

const (
	SessionBackendMemory   SessionBackend = "memory"
	SessionBackendDatabase SessionBackend = "database"
	SessionBackendRedis    SessionBackend = "redis"
)

// SessionConfig selects where the console persists the session token.
type SessionConfig struct {
	Backend SessionBackend `yaml:"backend"`
	// Profile separates the tokens of multiple console users on the same storage backend.
	Profile string `yaml:"profile"`

	Redis RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Address   string        `yaml:"address"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"` // 0 keeps the token until logout or expiry
}

func (c *SessionConfig) Validate() error {
	if c.Profile == "" {
		c.Profile = "default"
	}

	switch c.Backend {
	case SessionBackendMemory, SessionBackendDatabase:
	case SessionBackendRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis backend requires an address")
		}
	default:
		return fmt.Errorf("unsupported session backend %q", c.Backend)
	}

	return nil
}
