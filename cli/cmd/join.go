package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/chisel/chunk"
	"github.com/pithecene-io/chisel/wire"
)

// JoinCommand returns the join command: reassemble a payload from a
// concatenated frame stream produced by split.
func JoinCommand() *cli.Command {
	return &cli.Command{
		Name:      "join",
		Usage:     "Reassemble a payload from a frame stream",
		ArgsUsage: "<frames-file>",
		Flags: []cli.Flag{
			ConfigFlag,
			FrameSizeFlag,
			OutputFlag,
		},
		Action: joinAction,
	}
}

func joinAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("join requires exactly one frames file", 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	// Every frame but the first and the last is exactly frameSize bytes
	// on the wire, so the stream can only be delimited knowing the frame
	// size used by split.
	frameSize := resolveInt(c, "frame-size", cfg.FrameSize, DefaultFrameSize)

	stream, err := os.ReadFile(c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("read frames: %v", err), 1)
	}
	if len(stream) == 0 {
		return cli.Exit("empty frame stream", 1)
	}

	r := wire.NewReassembler()
	for offset := 0; offset < len(stream); {
		size := frameSize
		if offset == 0 {
			// The first frame's chunk is charged both the header and the
			// rolling length field, so it sits MetaSize bytes under the
			// frame limit on the wire.
			size = frameSize - chunk.MetaSize
		}
		end := offset + size
		if end > len(stream) {
			end = len(stream)
		}
		if err := r.Consume(stream[offset:end]); err != nil {
			return cli.Exit(fmt.Sprintf("frame at offset %d: %v", offset, err), 1)
		}
		offset = end
	}

	payload, err := r.Bytes()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	out, closeOut, err := openOutput(c.String("out"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer closeOut()

	if _, err := out.Write(payload); err != nil {
		return cli.Exit(fmt.Sprintf("write payload: %v", err), 1)
	}
	return nil
}
