package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices from the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		h := newHub(store, nil, newLogger())
		h.Init(cmd.Context())
		if !h.LoggedIn() {
			return fmt.Errorf("no saved session, run 'smartlife login' first")
		}

		devices := h.Devices()
		if len(devices) == 0 {
			fmt.Println("No devices found.")
			return nil
		}

		for _, d := range devices {
			state := "off"
			if d.Data.State != nil && *d.Data.State {
				state = "on"
			}
			if !d.Data.Online {
				state = "offline"
			}
			fmt.Printf("%-24s  %-10s  %-8s  %s\n", d.ID, d.Type, state, d.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
