package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(providersCmd)
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the available STT providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		settings, err := loadSettings(svc)
		if err != nil {
			return err
		}

		for _, provider := range settings.Providers {
			marker := "  "
			if provider.ID == settings.ProviderID {
				marker = "* "
			}
			fmt.Printf("%s%-10s %-10s %s\n", marker, provider.ID, provider.Label, provider.BaseURL)
		}
		return nil
	},
}
