package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/chisel/chunk"
	"github.com/pithecene-io/chisel/iox"
	"github.com/pithecene-io/chisel/wire"
)

// SplitCommand returns the split command: read a payload file and write
// its wire frames, concatenated in production order.
func SplitCommand() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Split a payload file into wire frames",
		ArgsUsage: "<input-file>",
		Flags: []cli.Flag{
			ConfigFlag,
			FrameSizeFlag,
			TopicFlag,
			OutputFlag,
		},
		Action: splitAction,
	}
}

func splitAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("split requires exactly one input file", 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	frameSize := resolveInt(c, "frame-size", cfg.FrameSize, DefaultFrameSize)
	topic := resolveInt(c, "topic", cfg.Topic, 0)
	if topic < 0 || topic > 255 {
		return cli.Exit(fmt.Sprintf("topic %d out of byte range", topic), 2)
	}

	payload, err := os.ReadFile(c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("read payload: %v", err), 1)
	}

	chunker, err := chunk.New(frameSize, byte(topic), payload)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	out, closeOut, err := openOutput(c.String("out"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer closeOut()

	for {
		frame, _, ok := wire.NextFrame(chunker)
		if !ok {
			break
		}
		if _, err := out.Write(frame); err != nil {
			return cli.Exit(fmt.Sprintf("write frame: %v", err), 1)
		}
	}

	return nil
}

// openOutput opens the output path for writing; "-" selects stdout, which
// must not be closed.
func openOutput(path string) (*os.File, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { iox.DiscardClose(f) }, nil
}
