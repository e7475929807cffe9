package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"sttmgr/internal/probe"
	"sttmgr/internal/utils"

	"github.com/spf13/cobra"
)

var (
	pingURL  string
	pingJSON bool
)

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().StringVarP(&pingURL, "url", "u", "", "Probe a specific URL instead of the active provider")
	pingCmd.Flags().BoolVar(&pingJSON, "json", false, "Output the result as JSON")
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test connectivity to the active STT endpoint",
	Long: `Test connectivity to the active STT endpoint.

1. Probe the active provider:
   sttmgr ping

2. Probe a custom URL:
   sttmgr ping -u https://api.example.com/v1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := pingURL
		apiKey := ""

		if target == "" {
			svc, err := newService()
			if err != nil {
				return err
			}
			settings, err := loadSettings(svc)
			if err != nil {
				return err
			}
			provider, ok := settings.ActiveProvider()
			if !ok {
				return fmt.Errorf("no active provider")
			}
			target = provider.BaseURL
			apiKey = settings.APIKeyFor(provider.ID)
		}

		if !utils.ValidateURL(target) {
			return fmt.Errorf("invalid URL: %s", target)
		}

		ctx, cancel := context.WithTimeout(context.Background(), probe.DefaultTimeout)
		defer cancel()
		result := probe.Ping(ctx, target, apiKey)

		if pingJSON {
			return printPingJSON(target, result)
		}

		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", target, result.Err)
			os.Exit(1)
		}
		if !result.Reachable {
			fmt.Fprintf(os.Stderr, "✗ %s: endpoint error (HTTP %d)\n", target, result.StatusCode)
			os.Exit(1)
		}
		fmt.Printf("✓ %s reachable (HTTP %d, %s)\n",
			target, result.StatusCode, result.Duration.Round(time.Millisecond))
		return nil
	},
}

func printPingJSON(target string, result probe.Result) error {
	out := map[string]interface{}{
		"url":         target,
		"reachable":   result.Reachable,
		"status_code": result.StatusCode,
		"duration_ms": result.Duration.Milliseconds(),
	}
	if result.Err != nil {
		out["error"] = result.Err.Error()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
