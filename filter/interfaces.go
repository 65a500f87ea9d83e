package filter

import (
	"github.com/s0up4200/moviemanager/tmdb"
)

// Filter defines the basic interface for movie filters
type Filter interface {
	// Evaluate checks if a movie matches the filter criteria. A failure to
	// evaluate is an *EvaluationError, never a silent non-match.
	Evaluate(movie tmdb.Movie) (bool, error)
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Apply returns the movies matching f, in their original order. A nil
// filter matches everything. The first evaluation error stops the scan.
func Apply(f Filter, movies []tmdb.Movie) ([]tmdb.Movie, error) {
	if f == nil {
		return movies, nil
	}

	matches := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		ok, err := f.Evaluate(m)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, m)
		}
	}
	return matches, nil
}
