package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func parsePosition(arg string) (int, error) {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", arg)
	}
	return pos, nil
}

func init() {
	showcaseCmd := &cobra.Command{
		Use:   "showcase",
		Short: "Manage the four profile showcase slots",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current showcase",
		RunE:  runShowcaseShow,
	}

	setCmd := &cobra.Command{
		Use:   "set <position> <tmdb-id>",
		Short: "Pin a rated movie to a showcase position (1-4)",
		Long:  "Pins a movie to one of the four profile slots. The movie must already be rated. Setting an occupied slot replaces it; a movie moved from another slot frees the old one.",
		Args:  cobra.ExactArgs(2),
		RunE:  runShowcaseSet,
	}

	clearCmd := &cobra.Command{
		Use:   "clear <position>",
		Short: "Clear a showcase position",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowcaseClear,
	}

	showcaseCmd.AddCommand(showCmd)
	showcaseCmd.AddCommand(setCmd)
	showcaseCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(showcaseCmd)
}

func runShowcaseShow(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL, userID)
	slots, err := client.Showcase()
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(slots)
	}

	if len(slots) == 0 {
		fmt.Println("Showcase is empty.")
		return nil
	}

	fmt.Printf("  %-10s %-10s %s\n", "POSITION", "TMDB ID", "RATING")
	fmt.Println("  " + strings.Repeat("-", 30))
	for i := range slots {
		fmt.Printf("  %-10d %-10d %d\n", slots[i].Position, slots[i].TMDBID, slots[i].Rating)
	}
	return nil
}

func runShowcaseSet(cmd *cobra.Command, args []string) error {
	position, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	tmdbID, err := parseTMDBID(args[1])
	if err != nil {
		return err
	}

	client := NewClient(serverURL, userID)
	if err := client.SetShowcase(position, tmdbID); err != nil {
		return err
	}
	fmt.Printf("Pinned %d to position %d.\n", tmdbID, position)
	return nil
}

func runShowcaseClear(cmd *cobra.Command, args []string) error {
	position, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL, userID)
	if err := client.ClearShowcase(position); err != nil {
		return err
	}
	fmt.Printf("Cleared position %d.\n", position)
	return nil
}
