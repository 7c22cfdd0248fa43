package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/chisel/bus"
	redisbus "github.com/pithecene-io/chisel/bus/redis"
	"github.com/pithecene-io/chisel/bus/webhook"
	"github.com/pithecene-io/chisel/chunk"
	"github.com/pithecene-io/chisel/cli/config"
	"github.com/pithecene-io/chisel/iox"
	"github.com/pithecene-io/chisel/log"
	"github.com/pithecene-io/chisel/metrics"
	"github.com/pithecene-io/chisel/transfer"
)

// SendCommand returns the send command: publish a payload file's frames
// to a configured bus.
func SendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Publish a payload file's frames to a bus",
		ArgsUsage: "<input-file>",
		Flags: []cli.Flag{
			ConfigFlag,
			FrameSizeFlag,
			TopicFlag,
			&cli.StringFlag{
				Name:  "bus-type",
				Usage: "Bus adapter: redis or webhook",
			},
			&cli.StringFlag{
				Name:  "bus-url",
				Usage: "Bus connection URL",
			},
			&cli.StringFlag{
				Name:  "bus-channel",
				Usage: "Pub/sub channel name (redis only)",
			},
			&cli.IntFlag{
				Name:  "retry-budget",
				Usage: "Per-chunk retransmission cap",
			},
		},
		Action: sendAction,
	}
}

func sendAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("send requires exactly one input file", 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	// Flags override config.
	if c.IsSet("bus-type") {
		cfg.Bus.Type = c.String("bus-type")
	}
	if c.IsSet("bus-url") {
		cfg.Bus.URL = c.String("bus-url")
	}
	if c.IsSet("bus-channel") {
		cfg.Bus.Channel = c.String("bus-channel")
	}

	topic := resolveInt(c, "topic", cfg.Topic, 0)
	if topic < 0 || topic > 255 {
		return cli.Exit(fmt.Sprintf("topic %d out of byte range", topic), 2)
	}

	retryBudget := resolveInt(c, "retry-budget", cfg.RetryBudget, 0)
	if retryBudget < 0 || retryBudget > 255 {
		return cli.Exit(fmt.Sprintf("retry budget %d out of byte range", retryBudget), 2)
	}

	b, err := buildBus(cfg.Bus)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer iox.DiscardErr(b.Close)

	// The bus payload limit caps the frame size.
	frameSize := resolveInt(c, "frame-size", cfg.FrameSize, b.MaxPayload())
	if frameSize > b.MaxPayload() {
		return cli.Exit(fmt.Sprintf("frame size %d exceeds bus payload limit %d", frameSize, b.MaxPayload()), 2)
	}

	payload, err := os.ReadFile(c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("read payload: %v", err), 1)
	}

	chunker, err := chunk.New(frameSize, byte(topic), payload)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	logger := log.NewLogger(byte(topic), "")
	collector := metrics.NewCollector(cfg.Bus.Type, byte(topic), "")

	sender, err := transfer.NewSender(chunker, b, transfer.Config{
		RetryBudget: uint8(retryBudget),
		Logger:      logger,
		Metrics:     collector,
	})
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	start := time.Now()
	if err := sender.SendAll(c.Context); err != nil {
		return cli.Exit(fmt.Sprintf("send failed: %v", err), 1)
	}

	snap := collector.Snapshot()
	logger.Info("transfer published", map[string]any{
		"frames":      snap.FramesPublished,
		"bytes":       len(payload),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// buildBus constructs the configured bus adapter.
func buildBus(cfg config.BusConfig) (bus.Bus, error) {
	switch cfg.Type {
	case "redis":
		retries := redisbus.DefaultRetries
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		return redisbus.New(redisbus.Config{
			URL:        cfg.URL,
			Channel:    cfg.Channel,
			Timeout:    cfg.Timeout.Duration,
			Retries:    retries,
			MaxPayload: cfg.MaxPayload,
		})
	case "webhook":
		retries := webhook.DefaultRetries
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		return webhook.New(webhook.Config{
			URL:        cfg.URL,
			Headers:    cfg.Headers,
			Timeout:    cfg.Timeout.Duration,
			Retries:    retries,
			MaxPayload: cfg.MaxPayload,
		})
	case "":
		return nil, fmt.Errorf("bus type required (redis or webhook)")
	default:
		return nil, fmt.Errorf("unknown bus type %q", cfg.Type)
	}
}
