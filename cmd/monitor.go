package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/meshlisten/internal/log"
	"firestige.xyz/meshlisten/internal/source"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [device]",
	Short: "Stream the relay's serial console without decoding",
	Long: `Print every line the relay writes to its serial console, unmodified.

Device selection and serial settings are the same as for listen.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap(args)
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		src, err := openSerial(cfg.Serial)
		if err != nil {
			return err
		}
		defer func() {
			if err := src.Close(); err != nil {
				log.GetLogger().WithError(err).Warn("failed to close serial port")
			}
		}()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Connecting to %s @ %d baud  (Ctrl-C to quit)\n", src.Device(), cfg.Serial.Baud)
		if err := runMonitor(ctx, src, out); err != nil {
			return err
		}
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\nDisconnected.")
		}
		return nil
	},
}

// runMonitor copies lines from src to out until src ends or ctx is done.
func runMonitor(ctx context.Context, src source.LineSource, out io.Writer) error {
	for {
		line, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
}
