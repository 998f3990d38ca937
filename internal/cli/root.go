// Package cli implements the twintray CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "twintray",
	Short: "System tray client for the Twingate Linux daemon",
	Long: `Twintray is a system tray front-end for the Twingate Linux client.
It polls the daemon for connection status, shows your resources in a tray
menu, and walks you through browser authentication when the daemon asks
for it. Run it with no arguments to start the tray.`,
	RunE: runTray,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(versionCmd)
}
