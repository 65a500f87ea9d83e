package cmd

import (
	"fmt"
	"strings"

	"github.com/s0up4200/moviemanager/tmdb"
)

// FormatOptions controls what movie details are printed
type FormatOptions struct {
	ShowOverview bool
	// Marks returns badges such as "watchlist" for a movie
	Marks func(movieID int) []string
}

// ConsoleFormatter provides console output formatting for movies
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatMovieList formats a list of movies for console display
func (f *ConsoleFormatter) FormatMovieList(title string, movies []tmdb.Movie, options FormatOptions) string {
	if len(movies) == 0 {
		return "No movies found"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s (%d):\n\n", title, len(movies))

	for i, movie := range movies {
		isLast := i == len(movies)-1
		f.formatMovie(&sb, movie, isLast, options)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func (f *ConsoleFormatter) formatMovie(sb *strings.Builder, movie tmdb.Movie, isLast bool, options FormatOptions) {
	prefix := "├"
	indent := "│   "
	if isLast {
		prefix = "╰"
		indent = "    "
	}

	fmt.Fprintf(sb, "%s── %s [%d]", prefix, movie, movie.ID)
	if options.Marks != nil {
		if marks := options.Marks(movie.ID); len(marks) > 0 {
			fmt.Fprintf(sb, " (%s)", strings.Join(marks, ", "))
		}
	}
	sb.WriteString("\n")

	var details []string
	if movie.VoteCount > 0 {
		details = append(details, fmt.Sprintf("Rating: %.1f (%d votes)", movie.VoteAverage, movie.VoteCount))
	}
	if movie.OriginalTitle != "" && movie.OriginalTitle != movie.Title {
		details = append(details, fmt.Sprintf("Original: %s", movie.OriginalTitle))
	}
	if len(details) > 0 {
		fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(details, " | "))
	}

	if poster := movie.Poster(); poster != "" {
		fmt.Fprintf(sb, "%sPoster: %s\n", indent, poster)
	}

	if options.ShowOverview && movie.Overview != "" {
		fmt.Fprintf(sb, "%s%s\n", indent, truncate(movie.Overview, 160))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
