package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Defaults for a fresh configuration.
const (
	DefaultTheme        = "default"
	DefaultBannerFont   = "slant"
	DefaultMaxHistory   = 100
	DefaultExportFormat = "txt"
	DefaultLogLevel     = "info"
)

// Archive backends.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// Adapter types.
const (
	AdapterWebhook = "webhook"
	AdapterRedis   = "redis"
)

// Config represents the client's config.yaml.
// CLI flags always override config values.
type Config struct {
	Theme          string   `yaml:"theme"`
	BannerFont     string   `yaml:"banner_font"`
	AutoCompletion bool     `yaml:"auto_completion"`
	MaxHistory     int      `yaml:"max_history"`
	ExportFormat   string   `yaml:"export_format"`
	Rich           bool     `yaml:"rich"`
	LogLevel       string   `yaml:"log_level"`
	Endpoint       string   `yaml:"endpoint,omitempty"`
	Timeout        Duration `yaml:"timeout,omitempty"`
	MinInterval    Duration `yaml:"min_interval,omitempty"`
	Page           int      `yaml:"page"`
	Count          int      `yaml:"count"`

	Archive ArchiveConfig `yaml:"archive,omitempty"`
	Adapter AdapterConfig `yaml:"adapter,omitempty"`
	Proxy   ProxyConfig   `yaml:"proxy,omitempty"`
}

// ProxyConfig routes search requests through a proxy pool.
// No endpoints disables proxying.
type ProxyConfig struct {
	Endpoints []string `yaml:"endpoints"`
	Strategy  string   `yaml:"strategy,omitempty"`
	StickyTTL Duration `yaml:"sticky_ttl,omitempty"`
}

// ArchiveConfig configures the optional answer archive.
// An empty backend disables archiving.
type ArchiveConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	S3PathStyle bool   `yaml:"s3_path_style,omitempty"`
}

// AdapterConfig configures optional answer-completed notifications.
// An empty type disables publishing.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML writes the duration in time.Duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Theme:          DefaultTheme,
		BannerFont:     DefaultBannerFont,
		AutoCompletion: true,
		MaxHistory:     DefaultMaxHistory,
		ExportFormat:   DefaultExportFormat,
		Rich:           true,
		LogLevel:       DefaultLogLevel,
		Page:           1,
		Count:          1,
	}
}

// Reset restores every field to its default.
func (c *Config) Reset() {
	*c = *Default()
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if c.MaxHistory < 1 {
		return fmt.Errorf("max_history must be >= 1, got %d", c.MaxHistory)
	}
	if c.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", c.Page)
	}
	if c.Count < 1 {
		return fmt.Errorf("count must be >= 1, got %d", c.Count)
	}
	if c.Timeout.Duration < 0 || c.MinInterval.Duration < 0 {
		return fmt.Errorf("timeout and min_interval must be >= 0")
	}
	switch c.Archive.Backend {
	case "", BackendFS, BackendS3:
	default:
		return fmt.Errorf("archive.backend must be %s or %s, got %q", BackendFS, BackendS3, c.Archive.Backend)
	}
	if c.Archive.Backend != "" && c.Archive.Path == "" {
		return fmt.Errorf("archive.path is required for backend %s", c.Archive.Backend)
	}
	switch c.Adapter.Type {
	case "", AdapterWebhook, AdapterRedis:
	default:
		return fmt.Errorf("adapter.type must be %s or %s, got %q", AdapterWebhook, AdapterRedis, c.Adapter.Type)
	}
	if c.Adapter.Type != "" && c.Adapter.URL == "" {
		return fmt.Errorf("adapter.url is required for adapter %s", c.Adapter.Type)
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		return fmt.Errorf("adapter.retries must be >= 0, got %d", *c.Adapter.Retries)
	}
	switch c.Proxy.Strategy {
	case "", "round_robin", "random", "sticky":
	default:
		return fmt.Errorf("proxy.strategy must be round_robin, random or sticky, got %q", c.Proxy.Strategy)
	}
	if c.Proxy.StickyTTL.Duration < 0 {
		return fmt.Errorf("proxy.sticky_ttl must be >= 0")
	}
	return nil
}

// settable lists the keys accepted by Set, in display order.
var settable = []string{
	"theme",
	"banner_font",
	"auto_completion",
	"max_history",
	"export_format",
	"rich",
	"log_level",
	"endpoint",
	"timeout",
	"min_interval",
	"page",
	"count",
}

// Keys returns the keys accepted by Set.
func Keys() []string {
	return append([]string(nil), settable...)
}

// Set assigns a top-level setting from its string form.
func (c *Config) Set(key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "theme":
		c.Theme = strings.ToLower(value)
	case "banner_font":
		c.BannerFont = value
	case "auto_completion":
		c.AutoCompletion, err = strconv.ParseBool(value)
	case "max_history":
		c.MaxHistory, err = strconv.Atoi(value)
	case "export_format":
		c.ExportFormat = strings.ToLower(value)
	case "rich":
		c.Rich, err = strconv.ParseBool(value)
	case "log_level":
		c.LogLevel = strings.ToLower(value)
	case "endpoint":
		c.Endpoint = value
	case "timeout":
		c.Timeout.Duration, err = time.ParseDuration(value)
	case "min_interval":
		c.MinInterval.Duration, err = time.ParseDuration(value)
	case "page":
		c.Page, err = strconv.Atoi(value)
	case "count":
		c.Count, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return c.Validate()
}

// Settings returns the top-level settings keyed by name.
func (c *Config) Settings() map[string]any {
	return map[string]any{
		"theme":           c.Theme,
		"banner_font":     c.BannerFont,
		"auto_completion": c.AutoCompletion,
		"max_history":     c.MaxHistory,
		"export_format":   c.ExportFormat,
		"rich":            c.Rich,
		"log_level":       c.LogLevel,
		"endpoint":        c.Endpoint,
		"timeout":         c.Timeout.String(),
		"min_interval":    c.MinInterval.String(),
		"page":            c.Page,
		"count":           c.Count,
		"archive":         c.Archive.Backend,
		"adapter":         c.Adapter.Type,
		"proxies":         len(c.Proxy.Endpoints),
	}
}
