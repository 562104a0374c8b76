package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <device-id>",
	Short: "Toggle a device on or off",
	Args:  cobra.ExactArgs(1),
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

		if err := h.Toggle(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Done.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}
