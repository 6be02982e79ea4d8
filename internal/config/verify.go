package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Supported browser engines
const (
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"
)

// VerifyConfig holds configuration for running the page verification
type VerifyConfig struct {
	BaseURL  string
	Browser  string
	Headless bool
	Timeout  time.Duration
	Install  bool
}

// LoadVerifyConfig loads verification settings from environment variables
func LoadVerifyConfig(getenv func(string) string) (*VerifyConfig, error) {
	config := &VerifyConfig{
		BaseURL:  getenv("BASE_URL"),
		Browser:  strings.ToLower(getenv("BROWSER")),
		Headless: getenv("HEADLESS") != "false",
		Timeout:  5 * time.Second,
		Install:  getenv("PLAYWRIGHT_INSTALL") == "true",
	}

	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8080"
	}
	if config.Browser == "" {
		config.Browser = BrowserChromium
	}

	if raw := getenv("TIMEOUT_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("TIMEOUT_MS must be an integer: %w", err)
		}
		config.Timeout = time.Duration(ms) * time.Millisecond
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the configuration can drive a browser
func (c *VerifyConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("BASE_URL is invalid: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL)
	}

	switch c.Browser {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
	default:
		return fmt.Errorf("BROWSER must be one of chromium, firefox, webkit, got %q", c.Browser)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	return nil
}
