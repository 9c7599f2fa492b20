package config

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// GatewayConfig describes how the console reaches the SMS gateway REST API.
type GatewayConfig struct {
	// BaseUrl is the scheme and host of the gateway, for example https://sms.example.com:8443.
	BaseUrl string `yaml:"base_url"`
	// RequestTimeout limits a single request. Zero disables the timeout.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`
}

func (c *GatewayConfig) Sanitize() {
	c.BaseUrl = strings.TrimRight(strings.TrimSpace(c.BaseUrl), "/")
}

func (c *GatewayConfig) Validate() error {
	u, err := url.Parse(c.BaseUrl)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("base_url must use http or https")
	}
	if u.Host == "" {
		return errors.New("base_url is missing a host")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout must not be negative")
	}
	return nil
}
