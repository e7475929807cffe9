package cmd

import (
	"fmt"

	"sttmgr/config"
	"sttmgr/config/storage"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the settings file from its most recent backup",
	Long:  "Restore the settings file from the most recent automatic backup. A backup is written before every settings change.",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := config.NewManager()
		if err != nil {
			return err
		}

		bm := storage.NewBackupManager(storage.DefaultBackupRetention)
		if err := bm.RestoreFromLatestBackup(manager.SettingsPath()); err != nil {
			return err
		}

		fmt.Println("Settings restored from the latest backup")
		return nil
	},
}
