package config

import (
	"fmt"
	"time"

	"github.com/pithecene-io/chisel/chunk"
)

// Config represents a chisel.yaml configuration file.
// All values are optional and act as defaults for command flags.
// CLI flags always override config values.
type Config struct {
	FrameSize   int       `yaml:"frame_size"`
	Topic       int       `yaml:"topic"`
	RetryBudget int       `yaml:"retry_budget"`
	Bus         BusConfig `yaml:"bus"`
}

// BusConfig holds bus adapter defaults from the config file.
type BusConfig struct {
	Type       string            `yaml:"type"` // redis or webhook
	URL        string            `yaml:"url"`
	Channel    string            `yaml:"channel,omitempty"`
	Headers    map[string]string `yaml:"headers,omitempty"`
	Timeout    Duration          `yaml:"timeout,omitempty"`
	Retries    *int              `yaml:"retries,omitempty"`
	MaxPayload int               `yaml:"max_payload,omitempty"`
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

// Validate checks value ranges; zero values mean "unset" and pass.
func (c *Config) Validate() error {
	if c.Topic < 0 || c.Topic > 255 {
		return fmt.Errorf("topic %d out of byte range", c.Topic)
	}
	if c.FrameSize != 0 && c.FrameSize <= chunk.MetaSize+chunk.HeaderSize {
		return fmt.Errorf("frame_size %d does not exceed framing overhead %d", c.FrameSize, chunk.MetaSize+chunk.HeaderSize)
	}
	if c.RetryBudget < 0 || c.RetryBudget > 255 {
		return fmt.Errorf("retry_budget %d out of byte range", c.RetryBudget)
	}
	return nil
}
