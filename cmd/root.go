// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"firestige.xyz/meshlisten/internal/source"
)

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command when called without any subcommands.
// Without a subcommand it behaves like listen.
var rootCmd = &cobra.Command{
	Use:   "meshlisten [device]",
	Short: "Meshtastic packet listener for the TEMPEST-LoRa relay",
	Long: `meshlisten reads the SX1262 debug log of a TEMPEST-LoRa relay over USB serial,
reassembles the raw radio captures and decodes them as Meshtastic packets
encrypted with the default channel key.

Without a device argument the first /dev/ttyACM* device is used.

Examples:
  meshlisten                          # Auto-detect the board and listen
  meshlisten /dev/ttyACM1             # Listen on a specific device
  meshlisten -c meshlisten.yaml       # Listen with a config file
  meshlisten replay session.pcap      # Decode a recorded session`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runListenCommand,
	Version:       "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults and MESHLISTEN_* environment when empty)")

	// Add subcommands
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(validateCmd)
}

// ExitCode maps a command error to the process exit status: 2 when no
// serial device was found, 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, source.ErrNoDevice):
		return 2
	default:
		return 1
	}
}
