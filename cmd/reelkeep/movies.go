package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	movieCmd := &cobra.Command{
		Use:   "movie",
		Short: "Inspect the movie metadata cache",
	}

	getCmd := &cobra.Command{
		Use:   "get <tmdb-id>",
		Short: "Show a cached movie record",
		Args:  cobra.ExactArgs(1),
		RunE:  runMovieGet,
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <tmdb-id>...",
		Short: "Resolve a set of movies through cache and provider",
		Long:  "Reconciles the given ids against the cache; uncached ids are fetched from the provider when one is configured, otherwise they come back as placeholders.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMovieResolve,
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-search cached movie titles",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMovieSearch,
	}
	searchCmd.Flags().IntP("limit", "l", 10, "Maximum number of results")

	movieCmd.AddCommand(getCmd)
	movieCmd.AddCommand(resolveCmd)
	movieCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(movieCmd)
}

func printMovie(m *MovieResponse) {
	fmt.Printf("%s", m.Title)
	if m.Year != nil {
		fmt.Printf(" (%d)", *m.Year)
	}
	fmt.Println()
	if m.Director != nil {
		fmt.Printf("  Director: %s\n", *m.Director)
	}
	if len(m.Genres) > 0 {
		fmt.Printf("  Genres:   %s\n", strings.Join(m.Genres, ", "))
	}
	fmt.Printf("  TMDB ID:  %d\n", m.TMDBID)
	fmt.Printf("  Cached:   %s\n", m.RefreshedAt.Format("2006-01-02 15:04"))
}

func runMovieGet(cmd *cobra.Command, args []string) error {
	tmdbID, err := parseTMDBID(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL, userID)
	movie, err := client.Movie(tmdbID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(movie)
	}
	printMovie(movie)
	return nil
}

func runMovieResolve(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseTMDBID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	client := NewClient(serverURL, userID)
	resolved, err := client.Resolve(ids)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resolved)
	}

	for i := range resolved {
		r := &resolved[i]
		if r.Placeholder {
			fmt.Printf("%d: unavailable\n", r.TMDBID)
			continue
		}
		title := r.Movie.Title
		if r.Movie.Year != nil {
			title = fmt.Sprintf("%s (%d)", title, *r.Movie.Year)
		}
		fmt.Printf("%d: %s\n", r.TMDBID, title)
	}
	return nil
}

func runMovieSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	client := NewClient(serverURL, userID)
	movies, err := client.SearchMovies(query, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(movies)
	}

	if len(movies) == 0 {
		fmt.Println("No cached titles match.")
		return nil
	}
	for i := range movies {
		m := &movies[i]
		fmt.Printf("  %-10d %s", m.TMDBID, m.Title)
		if m.Year != nil {
			fmt.Printf(" (%d)", *m.Year)
		}
		fmt.Println()
	}
	return nil
}
