// Package config loads harvester settings from an optional YAML file and
// HARVESTER_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Fetch engine identifiers.
const (
	EngineBrowser = "browser"
	EngineHTTP    = "http"
)

// Config is the full harvester configuration.
type Config struct {
	Symbol   string
	Pages    int
	Output   string
	LogLevel string

	Fetch      FetchConfig
	Browser    BrowserConfig
	Store      StoreConfig
	Publishers PublishersConfig
}

// FetchConfig selects and tunes the page-fetching engine.
type FetchConfig struct {
	Engine             string
	HTTPTimeoutSeconds int
	UserAgent          string
}

// BrowserConfig tunes the headless browser session.
type BrowserConfig struct {
	Headless          bool
	NoSandbox         bool
	Bin               string
	NavTimeoutSeconds int
}

// StoreConfig points at the local record archive. Empty path disables it.
type StoreConfig struct {
	Path string
}

// PublishersConfig points at the publishers file. Empty path disables
// publishing.
type PublishersConfig struct {
	File string
}

// Load reads configuration from the given file path (or ./config.yaml when
// empty, which may be absent) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("symbol", "eur-usd")
	v.SetDefault("pages", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("fetch.engine", EngineBrowser)
	v.SetDefault("fetch.http_timeout_seconds", 15)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.nav_timeout_seconds", 30)

	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Symbol:   strings.TrimSpace(v.GetString("symbol")),
		Pages:    v.GetInt("pages"),
		Output:   strings.TrimSpace(v.GetString("output")),
		LogLevel: v.GetString("log.level"),
		Fetch: FetchConfig{
			Engine:             strings.ToLower(strings.TrimSpace(v.GetString("fetch.engine"))),
			HTTPTimeoutSeconds: v.GetInt("fetch.http_timeout_seconds"),
			UserAgent:          strings.TrimSpace(v.GetString("fetch.user_agent")),
		},
		Browser: BrowserConfig{
			Headless:          v.GetBool("browser.headless"),
			NoSandbox:         v.GetBool("browser.no_sandbox"),
			Bin:               strings.TrimSpace(v.GetString("browser.bin")),
			NavTimeoutSeconds: v.GetInt("browser.nav_timeout_seconds"),
		},
		Store: StoreConfig{
			Path: strings.TrimSpace(v.GetString("store.path")),
		},
		Publishers: PublishersConfig{
			File: strings.TrimSpace(v.GetString("publishers.file")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects values no component can run with.
func (c *Config) validate() error {
	if c.Symbol == "" {
		return errors.New("symbol is required")
	}
	if c.Pages < 0 {
		return fmt.Errorf("pages must not be negative, got %d", c.Pages)
	}
	switch c.Fetch.Engine {
	case EngineBrowser, EngineHTTP:
	default:
		return fmt.Errorf("fetch.engine %q not supported (expected %q or %q)",
			c.Fetch.Engine, EngineBrowser, EngineHTTP)
	}
	if c.Fetch.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.http_timeout_seconds must be positive, got %d", c.Fetch.HTTPTimeoutSeconds)
	}
	if c.Browser.NavTimeoutSeconds <= 0 {
		return fmt.Errorf("browser.nav_timeout_seconds must be positive, got %d", c.Browser.NavTimeoutSeconds)
	}
	return nil
}
