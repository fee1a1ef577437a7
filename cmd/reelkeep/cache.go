package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Metadata cache maintenance",
	}

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete cache records older than the staleness window",
		Long:  "Removes stale records from the metadata cache. Pruned movies are re-fetched from the provider the next time someone looks at them.",
		RunE:  runCachePrune,
	}

	cacheCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL, userID)
	resp, err := client.PruneCache()
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}
	fmt.Printf("Pruned %d records.\n", resp.Deleted)
	return nil
}
