// Package main is the entry point for meshlisten, the TEMPEST-LoRa serial
// listener and Meshtastic packet decoder.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/meshlisten/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}
