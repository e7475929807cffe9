package cmd

import (
	"fmt"

	"sttmgr/internal/remote"
	"sttmgr/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.AddCommand(setURLCmd)
	setCmd.AddCommand(setKeyCmd)
	setCmd.AddCommand(setModelCmd)
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set a field of the active provider",
}

var setURLCmd = &cobra.Command{
	Use:   "url <base-url>",
	Short: "Set the base URL of the active provider",
	Long:  "Set the base URL of the active provider. Only the custom provider accepts a base URL; the hosted providers have fixed endpoints.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL := utils.NormalizeBaseURL(args[0])
		if !utils.ValidateURL(baseURL) {
			return fmt.Errorf("invalid URL: %s", args[0])
		}
		return setField(func(svc remote.Service, providerID string) error {
			ctx, cancel := callContext()
			defer cancel()
			return svc.SetBaseURL(ctx, providerID, baseURL)
		}, "Base URL set to "+baseURL)
	},
}

var setKeyCmd = &cobra.Command{
	Use:   "key <api-key>",
	Short: "Set the API key of the active provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		return setField(func(svc remote.Service, providerID string) error {
			ctx, cancel := callContext()
			defer cancel()
			return svc.SetAPIKey(ctx, providerID, key)
		}, "API key set to "+utils.MaskAPIKey(key))
	},
}

var setModelCmd = &cobra.Command{
	Use:   "model <model>",
	Short: "Set the model of the active provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := args[0]
		return setField(func(svc remote.Service, providerID string) error {
			ctx, cancel := callContext()
			defer cancel()
			return svc.SetModel(ctx, providerID, model)
		}, "Model set to "+model)
	},
}

// setField resolves the active provider and applies one field write.
func setField(write func(svc remote.Service, providerID string) error, done string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	settings, err := loadSettings(svc)
	if err != nil {
		return err
	}
	if settings.ProviderID == "" {
		return fmt.Errorf("no active provider")
	}
	if err := write(svc, settings.ProviderID); err != nil {
		return err
	}
	fmt.Println(done)
	return nil
}
