package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "smartlife",
	Short: "SmartLife is a local controller for Smart Life cloud devices",
	Long: `A local controller for devices paired with the Tuya Smart Life cloud.
It keeps your session and device list on disk and exposes a small REST API
plus a browser shell for switching lights on and off.`,
	Version: Version,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
