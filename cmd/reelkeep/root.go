package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	userID     int64
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "reelkeep",
	Short: "CLI client for the reelkeep movie tracker",
	Long: `reelkeep - CLI client for the reelkeep movie tracker

Manage your rated library, watchlist, and profile showcase, and
inspect the local movie metadata cache.

Run 'reelkeepd' to start the server daemon.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8585", "Server URL")
	rootCmd.PersistentFlags().Int64Var(&userID, "user", 1, "User ID sent as X-User-ID")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("reelkeep {{.Version}}\n")
}
