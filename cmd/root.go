package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vitalwatch",
	Short: "Heart-rate monitoring backend pairing elders with caregivers.",
	Long: `vitalwatch stores heart-rate readings reported by elders' devices and alerts the
caregiver paired with each device when a reading is above the threshold.

Configuration is read from the environment (ENVIRONMENT, SERVER_PORT, DATABASE_DRIVER,
DATABASE_DSN, SECRET_ACCESS_TOKEN, DELIVERY_TIMEOUT, EXPO_*, MAILGUN_*).`,
	SilenceUsage: true,
}

// Execute runs the CLI and exits with a non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, accountCmd)
}
