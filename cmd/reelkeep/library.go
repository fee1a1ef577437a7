package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseTMDBID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid tmdb id %q", arg)
	}
	return id, nil
}

func init() {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage your rated library",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List rated movies, most recently watched first",
		RunE:  runLibraryList,
	}
	listCmd.Flags().IntP("limit", "l", 50, "Maximum number of entries to return")
	listCmd.Flags().IntP("offset", "o", 0, "Number of entries to skip")

	addCmd := &cobra.Command{
		Use:   "add <tmdb-id> <rating>",
		Short: "Rate a movie and add it to the library",
		Long:  "Adds a movie with a 0-10 rating. Re-adding an already rated movie updates the rating in place.",
		Args:  cobra.ExactArgs(2),
		RunE:  runLibraryAdd,
	}

	rateCmd := &cobra.Command{
		Use:   "rate <tmdb-id> <rating>",
		Short: "Change the rating of a movie already in the library",
		Args:  cobra.ExactArgs(2),
		RunE:  runLibraryRate,
	}

	removeCmd := &cobra.Command{
		Use:   "remove <tmdb-id>",
		Short: "Remove a movie from the library",
		Long:  "Removes the rating and frees any showcase slot the movie occupied.",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibraryRemove,
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the entire library",
		Long:  "Deletes every rated movie (and the showcase along with them). Watchlist is untouched.",
		RunE:  runLibraryReset,
	}
	resetCmd.Flags().Bool("yes", false, "Skip confirmation")

	libraryCmd.AddCommand(listCmd)
	libraryCmd.AddCommand(addCmd)
	libraryCmd.AddCommand(rateCmd)
	libraryCmd.AddCommand(removeCmd)
	libraryCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(libraryCmd)
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	client := NewClient(serverURL, userID)
	data, err := client.Library(limit, offset)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(data)
	}

	if len(data.Items) == 0 {
		fmt.Println("No movies in library.")
		return nil
	}

	fmt.Printf("Library (%d movies):\n\n", data.Total)
	fmt.Printf("  %-10s %-8s %s\n", "TMDB ID", "RATING", "WATCHED")
	fmt.Println("  " + strings.Repeat("-", 40))
	for i := range data.Items {
		item := &data.Items[i]
		fmt.Printf("  %-10d %-8d %s\n", item.TMDBID, item.Rating, item.WatchedAt.Format("2006-01-02"))
	}

	if data.Total > offset+len(data.Items) {
		fmt.Printf("\n  Showing %d of %d movies. Use --limit/--offset to see more.\n", len(data.Items), data.Total)
	}
	return nil
}

func runLibraryAdd(cmd *cobra.Command, args []string) error {
	tmdbID, err := parseTMDBID(args[0])
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid rating %q", args[1])
	}

	client := NewClient(serverURL, userID)
	entry, err := client.AddToLibrary(tmdbID, rating)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(entry)
	}
	fmt.Printf("Added %d with rating %d.\n", entry.TMDBID, entry.Rating)
	return nil
}

func runLibraryRate(cmd *cobra.Command, args []string) error {
	tmdbID, err := parseTMDBID(args[0])
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid rating %q", args[1])
	}

	client := NewClient(serverURL, userID)
	entry, err := client.UpdateRating(tmdbID, rating)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(entry)
	}
	fmt.Printf("Updated %d to rating %d.\n", entry.TMDBID, entry.Rating)
	return nil
}

func runLibraryRemove(cmd *cobra.Command, args []string) error {
	tmdbID, err := parseTMDBID(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL, userID)
	if err := client.RemoveFromLibrary(tmdbID); err != nil {
		return err
	}
	fmt.Printf("Removed %d from library.\n", tmdbID)
	return nil
}

func runLibraryReset(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Printf("This deletes the entire library for user %d. Continue? [y/N] ", userID)
		var answer string
		_, _ = fmt.Scanln(&answer)
		if !strings.EqualFold(answer, "y") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	client := NewClient(serverURL, userID)
	resp, err := client.ResetLibrary()
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}
	fmt.Printf("Deleted %d movies.\n", resp.Deleted)
	return nil
}
