package config

import (
	"strings"
	"time"
)

// MockConfig configures the gateway-mock service which emulates the SMS gateway REST API.
type MockConfig struct {
	// ListeningAddress is the address and port of the mock gateway.
	ListeningAddress string `yaml:"listening_address"`
	// RequestLogging enables logging of all HTTP requests.
	RequestLogging bool `yaml:"request_logging"`
	// TokenLifetime is the idle lifetime of an issued token.
	TokenLifetime time.Duration `yaml:"token_lifetime"`
	// SeedFile is an optional YAML file with users and files to load on startup.
	SeedFile string `yaml:"seed_file"`
	// AdminUser is created with all permissions if no seed file is given.
	AdminUser     string `yaml:"admin_user"`
	AdminPassword string `yaml:"admin_password"`
	// DeliveryInterval is the period of the simulated delivery of queued messages. Zero disables the simulation.
	DeliveryInterval time.Duration `yaml:"delivery_interval"`
	// MetricsAddress of the Prometheus endpoint of the mock gateway. Disabled if empty.
	MetricsAddress string `yaml:"metrics_address"`
	// HealthAddress of the health endpoint (GET /health). Disabled if empty.
	HealthAddress string `yaml:"health_address"`

	Database DatabaseConfig `yaml:"database"`
}

func (c *MockConfig) Sanitize() {
	c.SeedFile = strings.TrimSpace(c.SeedFile)
	if c.TokenLifetime <= 0 {
		c.TokenLifetime = 8 * time.Hour
	}
}
