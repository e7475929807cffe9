package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable transcription",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable transcription",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(false)
	},
}

func setEnabled(enabled bool) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	if err := svc.SetEnabled(ctx, enabled); err != nil {
		return err
	}
	if enabled {
		fmt.Println("Transcription enabled")
	} else {
		fmt.Println("Transcription disabled")
	}
	return nil
}
