package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"firestige.xyz/meshlisten/internal/config"
	"firestige.xyz/meshlisten/internal/log"
	"firestige.xyz/meshlisten/internal/pipeline"
	"firestige.xyz/meshlisten/internal/sink/pcap"
	"firestige.xyz/meshlisten/internal/source/file"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Decode a recorded session",
	Long: `Decode a recorded session instead of a live serial port.

A .pcap file written by output.pcap is fed frame by frame. Any other file is
treated as a captured serial log and fed line by line.

Examples:
  meshlisten replay session.pcap
  meshlisten replay minicom.log`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap(nil)
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		return runReplay(ctx, args[0], cfg.Output, cmd.OutOrStdout())
	},
}

func runReplay(ctx context.Context, path string, cfg config.OutputConfig, out io.Writer) error {
	if cfg.PCAP != "" && filepath.Clean(cfg.PCAP) == filepath.Clean(path) {
		return fmt.Errorf("refusing to record into the file being replayed: %s", path)
	}

	if !file.IsPcap(path) {
		src, err := file.OpenLog(path)
		if err != nil {
			return err
		}
		defer src.Close()
		return decodeStream(ctx, src, cfg, out, log.GetLogger().WithField("file", path))
	}

	src, err := file.OpenPcap(path)
	if err != nil {
		return err
	}
	defer src.Close()
	if src.LinkType() != pcap.LinkType {
		log.GetLogger().WithField("link_type", src.LinkType()).Warn("unexpected pcap link type, decoding anyway")
	}

	sinks, closeSinks, err := buildSinks(cfg, out)
	if err != nil {
		return err
	}
	defer closeSinks()

	logger := log.GetLogger().WithField("file", path)
	p := pipeline.NewBuilder().WithSinks(sinks...).WithLogger(logger).Build()
	defer p.Flush()

	for ctx.Err() == nil {
		capture, _, err := src.ReadCapture()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		p.HandleCapture(capture)
	}

	logger.WithFields(p.Stats().Fields()).Info("replay finished")
	return nil
}
