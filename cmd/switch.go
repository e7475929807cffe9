package cmd

import (
	"fmt"

	"sttmgr/internal/catalog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(switchCmd)
}

var switchCmd = &cobra.Command{
	Use:   "switch <provider>",
	Short: "Switch the active STT provider",
	Long: `Switch the active STT provider.

Available providers can be listed with 'sttmgr providers'. The stored
API key, endpoint and model for the target provider are picked up
automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		svc, err := newService()
		if err != nil {
			return err
		}
		ctx, cancel := callContext()
		defer cancel()
		if err := svc.SetProvider(ctx, id); err != nil {
			return err
		}

		if provider, ok := catalog.Describe(id); ok {
			fmt.Printf("Switched to %s (%s)\n", provider.Label, provider.BaseURL)
		} else {
			fmt.Printf("Switched to %s\n", id)
		}
		return nil
	},
}
