// Package cmd provides CLI commands for the chisel binary.
package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/chisel/cli/config"
)

// DefaultFrameSize is the frame size applied when neither flag nor config
// provides one.
const DefaultFrameSize = 4096

// Shared flags across commands.
var (
	// ConfigFlag points at a chisel.yaml file providing defaults.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to chisel.yaml config file",
	}

	// FrameSizeFlag sets the maximum wire frame size in bytes.
	FrameSizeFlag = &cli.IntFlag{
		Name:  "frame-size",
		Usage: "Maximum wire frame size in bytes, header included",
	}

	// TopicFlag sets the single-byte topic tag carried in the header.
	TopicFlag = &cli.IntFlag{
		Name:  "topic",
		Usage: "Topic tag (0-255) identifying the payload's channel",
	}

	// OutputFlag selects the output path; "-" means stdout.
	OutputFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Output path (default: stdout)",
		Value:   "-",
	}
)

// loadConfig reads the --config file when given, or returns an empty
// config so flag resolution can proceed on defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// resolveInt applies flag > config > fallback precedence.
func resolveInt(c *cli.Context, name string, cfgValue, fallback int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	if cfgValue != 0 {
		return cfgValue
	}
	return fallback
}
