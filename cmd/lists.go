package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviemanager/filter"
	"github.com/s0up4200/moviemanager/library"
	"github.com/s0up4200/moviemanager/tmdb"
)

var (
	filterExpr   string
	showOverview bool
)

// watchlistCmd represents the watchlist command
var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "List the movies on your watchlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context(), library.Watchlist)
	},
}

// favoritesCmd represents the favorites command
var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"favorite", "favourites"},
	Short:   "List your favorite movies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context(), library.Favorites)
	},
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search movies by title",
	Long: `Search TMDB for movies by title. Results on your watchlist or favorites
are marked when you are logged in. Press Ctrl-C to cancel a slow search.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(searchCmd)

	for _, c := range []*cobra.Command{watchlistCmd, favoritesCmd, searchCmd} {
		c.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or name of a filter from the config")
		c.Flags().BoolVar(&showOverview, "overview", false, "print movie overviews")
	}
}

func runList(ctx context.Context, kind library.Kind) error {
	if err := requireSession(); err != nil {
		return err
	}

	f, err := compileFilter(filterExpr)
	if err != nil {
		return err
	}

	if err := lib.Refresh(ctx); err != nil {
		return err
	}

	movies, err := filter.Apply(f, lib.List(kind))
	if err != nil {
		return fmt.Errorf("filter failed: %w", err)
	}

	title := "Watchlist"
	if kind == library.Favorites {
		title = "Favorites"
	}

	fmt.Print(NewConsoleFormatter().FormatMovieList(title, movies, FormatOptions{
		ShowOverview: showOverview,
		Marks:        marksFor(kind),
	}))
	fmt.Println()
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	f, err := compileFilter(filterExpr)
	if err != nil {
		return err
	}

	// Mark results already on a list; best effort
	if client.Credentials().HasSession() {
		if err := lib.Refresh(cmd.Context()); err != nil {
			logger.Warn().Err(err).Msg("Could not load your lists")
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	logger.Debug().Str("query", query).Msg("Searching movies")
	call := client.SearchAsync(cmd.Context(), query, nil)

	select {
	case <-call.Done():
	case <-interrupt:
		call.Cancel()
		<-call.Done()
	}

	movies, err := call.Wait(context.Background())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	movies, err = filter.Apply(f, movies)
	if err != nil {
		return fmt.Errorf("filter failed: %w", err)
	}

	fmt.Print(NewConsoleFormatter().FormatMovieList(fmt.Sprintf("Results for %q", query), movies, FormatOptions{
		ShowOverview: showOverview,
		Marks:        marksFor(-1),
	}))
	fmt.Println()
	return nil
}

// marksFor labels list membership, skipping the list being printed
func marksFor(current library.Kind) func(int) []string {
	return func(movieID int) []string {
		var marks []string
		for _, kind := range []library.Kind{library.Watchlist, library.Favorites} {
			if kind != current && lib.Contains(kind, movieID) {
				marks = append(marks, kind.String())
			}
		}
		return marks
	}
}

// lookupMovie finds a movie in the mirrored lists, falling back to a bare
// entry carrying only the id
func lookupMovie(movieID int) tmdb.Movie {
	if m, ok := lib.Find(movieID); ok {
		return m
	}
	return tmdb.Movie{ID: movieID, Title: fmt.Sprintf("movie %d", movieID)}
}
