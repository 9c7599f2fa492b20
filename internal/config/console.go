package config

import "strings"

type ConsoleConfig struct {
	// DefaultView is shown for unknown or empty locations.
	DefaultView string `yaml:"default_view"`
	// Color enables colored terminal output.
	Color bool `yaml:"color"`
	// ExportDir is the directory message exports are written to.
	ExportDir string `yaml:"export_dir"`
	// PageSize is the number of rows requested for list views.
	PageSize int `yaml:"page_size"`
}

func (c *ConsoleConfig) Sanitize() {
	c.DefaultView = strings.TrimLeft(strings.TrimSpace(c.DefaultView), "#!")
	if c.DefaultView == "" {
		c.DefaultView = "message"
	}
	if c.PageSize <= 0 {
		c.PageSize = 25
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
}
