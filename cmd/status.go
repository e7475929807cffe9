package cmd

import (
	"fmt"

	"sttmgr/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current STT settings",
	Long:  "Show the active provider, its endpoint, API key and model, and whether transcription is enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		settings, err := loadSettings(svc)
		if err != nil {
			return err
		}

		state := "disabled"
		if settings.Enabled {
			state = "enabled"
		}
		fmt.Printf("Transcription: %s\n", state)

		provider, ok := settings.ActiveProvider()
		if !ok {
			fmt.Printf("Provider: %s (unknown)\n", settings.ProviderID)
			return nil
		}

		fmt.Printf("Provider: %s\n", provider.Label)
		fmt.Printf("  Base URL: %s\n", provider.BaseURL)
		key := settings.APIKeyFor(provider.ID)
		if key == "" {
			fmt.Println("  API Key: (not set)")
		} else {
			fmt.Printf("  API Key: %s\n", utils.MaskAPIKey(key))
		}
		fmt.Printf("  Model: %s\n", settings.ModelFor(provider.ID))

		return nil
	},
}
