package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviemanager/library"
)

var (
	markRemove bool
	markToggle bool
)

// markCmd represents the mark command
var markCmd = &cobra.Command{
	Use:   "mark <watchlist|favorite> <movie-id>",
	Short: "Add or remove a movie from your watchlist or favorites",
	Long: `Add a movie to your watchlist or favorites, or remove it with --remove.
--toggle flips the current membership. With --dry-run nothing is changed.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"watchlist", "favorite"},
	RunE:      runMark,
}

func init() {
	rootCmd.AddCommand(markCmd)

	markCmd.Flags().BoolVar(&markRemove, "remove", false, "remove the movie from the list")
	markCmd.Flags().BoolVar(&markToggle, "toggle", false, "add the movie if missing, remove it otherwise")
	markCmd.MarkFlagsMutuallyExclusive("remove", "toggle")
}

func runMark(cmd *cobra.Command, args []string) error {
	kind, err := library.ParseKind(args[0])
	if err != nil {
		return err
	}

	movieID, err := strconv.Atoi(args[1])
	if err != nil || movieID <= 0 {
		return fmt.Errorf("invalid movie id %q", args[1])
	}

	if err := requireSession(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := lib.Refresh(ctx); err != nil {
		return err
	}

	movie := lookupMovie(movieID)
	add := !markRemove
	if markToggle {
		add = !lib.Contains(kind, movieID)
	}

	action := "Add"
	if !add {
		action = "Remove"
	}

	if cfg.Safety.DryRun {
		fmt.Printf("[dry-run] %s %s on %s\n", action, movie, kind)
		return nil
	}

	if err := lib.Set(ctx, kind, movie, add); err != nil {
		return err
	}

	if add {
		fmt.Printf("✓ Added %s to %s\n", movie, kind)
	} else {
		fmt.Printf("✓ Removed %s from %s\n", movie, kind)
	}
	return nil
}
