package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	watchlistCmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage your watchlist",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List watchlisted movies, most recently added first",
		RunE:  runWatchlistList,
	}

	addCmd := &cobra.Command{
		Use:   "add <tmdb-id>",
		Short: "Add a movie to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatchlistAdd,
	}

	checkCmd := &cobra.Command{
		Use:   "check <tmdb-id>",
		Short: "Check whether a movie is on the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatchlistCheck,
	}

	removeCmd := &cobra.Command{
		Use:   "remove <tmdb-id>",
		Short: "Remove a movie from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatchlistRemove,
	}

	watchlistCmd.AddCommand(listCmd)
	watchlistCmd.AddCommand(addCmd)
	watchlistCmd.AddCommand(checkCmd)
	watchlistCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(watchlistCmd)
}

func runWatchlistList(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL, userID)
	entries, err := client.Watchlist()
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println("Watchlist is empty.")
		return nil
	}

	fmt.Printf("Watchlist (%d movies):\n\n", len(entries))
	fmt.Printf("  %-10s %s\n", "TMDB ID", "ADDED")
	fmt.Println("  " + strings.Repeat("-", 30))
	for i := range entries {
		fmt.Printf("  %-10d %s\n", entries[i].TMDBID, entries[i].AddedAt.Format("2006-01-02"))
	}
	return nil
}

func runWatchlistAdd(cmd *cobra.Command, args []string) error {
	tmdbID, err := parseTMDBID(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL, userID)
	entry, err := client.AddToWatchlist(tmdbID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(entry)
	}
	fmt.Printf("Added %d to watchlist.\n", entry.TMDBID)
	return nil
}

func runWatchlistCheck(cmd *cobra.Command, args []string) error {
	tmdbID, err := parseTMDBID(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL, userID)
	resp, err := client.CheckWatchlist(tmdbID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}
	if resp.InWatchlist {
		fmt.Printf("%d is on the watchlist.\n", tmdbID)
	} else {
		fmt.Printf("%d is not on the watchlist.\n", tmdbID)
	}
	return nil
}

func runWatchlistRemove(cmd *cobra.Command, args []string) error {
	tmdbID, err := parseTMDBID(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL, userID)
	if err := client.RemoveFromWatchlist(tmdbID); err != nil {
		return err
	}
	fmt.Printf("Removed %d from watchlist.\n", tmdbID)
	return nil
}
