package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/meshlisten/internal/config"
	"firestige.xyz/meshlisten/internal/log"
	"firestige.xyz/meshlisten/internal/source"
)

var listenCmd = &cobra.Command{
	Use:   "listen [device]",
	Short: "Decode packets from the relay's serial console",
	Long: `Open the relay's serial console and decode every captured packet until interrupted.

Examples:
  meshlisten listen
  meshlisten listen /dev/ttyACM0
  MESHLISTEN_OUTPUT_FORMAT=yaml meshlisten listen`,
	Args: cobra.MaximumNArgs(1),
	RunE: runListenCommand,
}

func runListenCommand(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap(args)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return runListen(ctx, cfg, cmd.OutOrStdout())
}

func runListen(ctx context.Context, cfg *config.Config, out io.Writer) error {
	src, err := openSerial(cfg.Serial)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.GetLogger().WithError(err).Warn("failed to close serial port")
		}
	}()

	return listenOn(ctx, src, src.Device(), cfg, out)
}

// listenOn decodes src until it ends or ctx is done. The stop marker is
// printed on every exit, read errors included.
func listenOn(ctx context.Context, src source.LineSource, device string, cfg *config.Config, out io.Writer) error {
	banner(out, cfg.Output.Format,
		fmt.Sprintf("Listening on %s at %d baud…  Ctrl+C to stop.", device, cfg.Serial.Baud))
	defer banner(out, cfg.Output.Format, "\n--- stopped ---")

	return decodeStream(ctx, src, cfg.Output, out, log.GetLogger().WithField("device", device))
}
