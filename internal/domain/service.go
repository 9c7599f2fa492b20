package domain

import (
	"bytes"
	"encoding/json"
)

// ServiceStatus is the state of one gateway process.
type ServiceStatus struct {
	Program string
	Status  string
	Ok      bool
}

// ServiceConfig is the raw gateway configuration document. The console never interprets it, it only
// ensures it is well-formed JSON before sending it back.
type ServiceConfig json.RawMessage

// ParseServiceConfig validates the given text and returns it as ServiceConfig.
func ParseServiceConfig(text string) (ServiceConfig, error) {
	raw := bytes.TrimSpace([]byte(text))
	if len(raw) == 0 {
		return nil, NewValidationError("Config", "Config must not be empty.")
	}
	if !json.Valid(raw) {
		return nil, NewValidationError("Config", "Config is not valid JSON.")
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, NewValidationError("Config", "Config must be a JSON object.")
	}

	return ServiceConfig(raw), nil
}

func (c ServiceConfig) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return c, nil
}

func (c *ServiceConfig) UnmarshalJSON(data []byte) error {
	*c = append((*c)[:0], data...)
	return nil
}

// Indent returns the configuration in a human-readable form.
func (c ServiceConfig) Indent() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, c, "", "  "); err != nil {
		return string(c)
	}
	return buf.String()
}

// ServiceConfigRequest is the JSON payload of a configuration update.
type ServiceConfigRequest struct {
	Config ServiceConfig
}
