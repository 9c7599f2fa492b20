package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/a8m/envsubst"
	"gopkg.in/yaml.v3"
)

// Config is shared by the console and the mock gateway. Each binary only reads the sections it needs.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`

	Console ConsoleConfig `yaml:"console"`

	Session SessionConfig `yaml:"session"`

	Database DatabaseConfig `yaml:"database"`

	Metrics MetricsConfig `yaml:"metrics"`

	Advanced struct {
		LogLevel       string        `yaml:"log_level"`
		LogPretty      bool          `yaml:"log_pretty"`
		LogJson        bool          `yaml:"log_json"`
		LogFile        string        `yaml:"log_file"` // console only, stdout belongs to the UI
		RecordActivity bool          `yaml:"record_activity"`
		StartupTimeout time.Duration `yaml:"startup_timeout"`
	} `yaml:"advanced"`

	Mock MockConfig `yaml:"mock"`
}

// LogStartupValues logs the most important configuration values on startup.
func (c *Config) LogStartupValues() {
	slog.Debug("Configuration loaded!", "logLevel", c.Advanced.LogLevel)

	slog.Debug("Gateway Details",
		"baseUrl", c.Gateway.BaseUrl,
		"requestTimeout", c.Gateway.RequestTimeout,
	)

	slog.Debug("Console Details",
		"defaultView", c.Console.DefaultView,
		"sessionBackend", c.Session.Backend,
		"profile", c.Session.Profile,
		"recordActivity", c.Advanced.RecordActivity,
		"metricsEnabled", c.Metrics.ListeningAddress != "",
	)
}

// Validate sanitizes all sections and checks them for errors.
func (c *Config) Validate() error {
	c.Gateway.Sanitize()
	c.Console.Sanitize()
	c.Mock.Sanitize()

	if err := c.Gateway.Validate(); err != nil {
		return fmt.Errorf("invalid gateway configuration: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("invalid session configuration: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}
	if err := c.Mock.Database.Validate(); err != nil {
		return fmt.Errorf("invalid mock database configuration: %w", err)
	}

	return nil
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Gateway = GatewayConfig{
		BaseUrl:        "http://localhost:8443",
		RequestTimeout: 0, // the gateway contract has no client side timeout
		UserAgent:      "sms-console",
	}

	cfg.Console = ConsoleConfig{
		DefaultView: "message",
		Color:       true,
		ExportDir:   ".",
		PageSize:    25,
	}

	cfg.Session = SessionConfig{
		Backend: SessionBackendDatabase,
		Profile: "default",
		Redis: RedisConfig{
			Address:   "localhost:6379",
			KeyPrefix: "sms-console:token:",
		},
	}

	cfg.Database = DatabaseConfig{
		Type: DatabaseSQLite,
		DSN:  "sms-console.db",
	}

	cfg.Metrics = MetricsConfig{
		ListeningAddress: "",
	}

	cfg.Advanced.LogLevel = "info"
	cfg.Advanced.LogPretty = false
	cfg.Advanced.LogJson = false
	cfg.Advanced.LogFile = "sms-console.log"
	cfg.Advanced.RecordActivity = true
	cfg.Advanced.StartupTimeout = 30 * time.Second

	cfg.Mock = MockConfig{
		ListeningAddress: ":8443",
		RequestLogging:   true,
		TokenLifetime:    8 * time.Hour,
		AdminUser:        "admin",
		AdminPassword:    "smsportal",
		MetricsAddress:   ":8788",
		HealthAddress:    ":11223",
		DeliveryInterval: 5 * time.Second,
		Database: DatabaseConfig{
			Type: DatabaseSQLite,
			DSN:  "file:gateway-mock?mode=memory&cache=shared",
		},
	}

	return cfg
}

// GetConfig returns the configuration from the YAML file named by SMS_PORTAL_CONFIG (config.yml by default).
func GetConfig() (*Config, error) {
	cfgFileName := "config.yml"
	if envCfgFileName := os.Getenv("SMS_PORTAL_CONFIG"); envCfgFileName != "" {
		cfgFileName = envCfgFileName
	}

	return GetConfigFromFile(cfgFileName)
}

// GetConfigFromFile returns the default configuration overridden by the values of the given YAML file.
// A missing file is not an error.
func GetConfigFromFile(cfgFileName string) (*Config, error) {
	cfg := defaultConfig()

	if err := loadConfigFile(cfg, cfgFileName); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no config file found, using defaults", "file", cfgFileName)
		} else {
			return nil, fmt.Errorf("failed to load config from yaml: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadConfigFile(cfg any, filename string) error {
	data, err := envsubst.ReadFile(filename)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("yaml error: %w", err)
	}

	return nil
}
