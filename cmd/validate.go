package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/meshlisten/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file given with --config, apply environment overrides
and validate it without opening the serial port.

Examples:
  meshlisten validate -c meshlisten.yaml
  MESHLISTEN_SERIAL_BAUD=9600 meshlisten validate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(configFile, cmd.OutOrStdout())
	},
}

func runValidate(path string, out io.Writer) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}

	device := cfg.Serial.Device
	if device == "" {
		device = "auto (" + cfg.Serial.Glob + ")"
	}
	pcapPath := cfg.Output.PCAP
	if pcapPath == "" {
		pcapPath = "off"
	}
	fmt.Fprintf(out, "VALID: device %s @ %d baud, output %s, pcap %s, log level %s\n",
		device, cfg.Serial.Baud, cfg.Output.Format, pcapPath, cfg.Log.Level)
	return nil
}
