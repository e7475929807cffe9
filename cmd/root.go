package cmd

import (
	"github.com/spf13/cobra"

	"sttmgr/internal/tui"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

var rootCmd = &cobra.Command{
	Use:   "sttmgr",
	Short: "Speech-to-text API settings manager",
	Long:  "A command line tool for managing speech-to-text provider settings: provider selection, endpoints, API keys and models",
	RunE: func(cmd *cobra.Command, args []string) error {
		// No subcommand: open the interactive settings screen
		return tui.Run()
	},
}

// Execute executes the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(`sttmgr {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)

	return rootCmd.Execute()
}
