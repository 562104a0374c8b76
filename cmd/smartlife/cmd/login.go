package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kwhite/smartlife/tuya"
)

var loginRegion string

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in to the Smart Life cloud and save the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		h := newHub(store, nil, newLogger())
		if err := h.Login(cmd.Context(), args[0], string(password), tuya.Region(loginRegion)); err != nil {
			return err
		}

		fmt.Printf("Signed in (%s). Session saved.\n", loginRegion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginRegion, "region", "eu", "Cloud region (eu or us)")
}
