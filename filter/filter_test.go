package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/moviemanager/tmdb"
)

func poster(p string) *string { return &p }

var testMovies = []tmdb.Movie{
	{ID: 76341, Title: "Mad Max: Fury Road", ReleaseDate: "2015-05-13", VoteAverage: 7.6, Popularity: 50, GenreIDs: []int{28, 12, 878}, OriginalLanguage: "en", PosterPath: poster("/fury.jpg")},
	{ID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15", VoteAverage: 8.4, Popularity: 60, GenreIDs: []int{18}, OriginalLanguage: "en"},
	{ID: 194, Title: "Amélie", OriginalTitle: "Le Fabuleux Destin d'Amélie Poulain", ReleaseDate: "2001-04-25", VoteAverage: 7.9, GenreIDs: []int{35, 10749}, OriginalLanguage: "fr"},
	{ID: 1, Title: "Untitled", ReleaseDate: ""},
}

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasGenre(28)`,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `containsFold(Title, "unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown variable",
			expression: `Runtime > 120`,
			wantErr:    true,
		},
		{
			name:       "non boolean",
			expression: `Year + 1`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `hasGenre(28) and Year > 2010 and VoteAverage >= 7.0 and daysSince(ReleaseDate) > 30`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := NewExprCompiler().Compile(tt.expression)

			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.True(t, errors.As(err, &compErr))
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expression, filter.Expression())
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	tests := []struct {
		expression string
		want       []int
	}{
		{`Year >= 2000`, []int{76341, 194}},
		{`Year == 0`, []int{1}},
		{`VoteAverage > 8`, []int{550}},
		{`hasGenre(35) or hasGenre(18)`, []int{550, 194}},
		{`containsFold(Title, "max")`, []int{76341}},
		{`startsWithFold(OriginalTitle, "le fab")`, []int{194}},
		{`endsWithFold(Title, "CLUB")`, []int{550}},
		{`Title contains "Max"`, []int{76341}},
		{`Title contains "max"`, nil},
		{`Title startsWith "Fight"`, []int{550}},
		{`lower(Title) endsWith "road"`, []int{76341}},
		{`OriginalLanguage == "fr"`, []int{194}},
		{`HasPoster`, []int{76341}},
		{`ReleaseDate < parseDate("2000-01-01") and Year > 0`, []int{550}},
		{`Movie.Popularity >= 50`, []int{76341, 550}},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			require.NoError(t, err)

			matches, err := Apply(f, testMovies)
			require.NoError(t, err)

			var got []int
			for _, m := range matches {
				got = append(got, m.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyNilFilter(t *testing.T) {
	matches, err := Apply(nil, testMovies)
	require.NoError(t, err)
	assert.Equal(t, testMovies, matches)
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isClassic": func(year int) bool { return year > 0 && year < 2000 },
	}))

	f, err := compiler.Compile(`isClassic(Year)`)
	require.NoError(t, err)

	ok, err := f.Evaluate(testMovies[1])
	require.NoError(t, err)
	assert.True(t, ok)

	matches, err := Apply(f, testMovies)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 550, matches[0].ID)
}

func TestEvaluationErrorReported(t *testing.T) {
	f, err := NewExprCompiler().Compile(`ID % VoteCount == 0`)
	require.NoError(t, err)

	ok, err := f.Evaluate(testMovies[0])
	assert.False(t, ok)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, 76341, evalErr.MovieID)
	assert.Equal(t, `ID % VoteCount == 0`, evalErr.Expression)
	assert.Contains(t, err.Error(), "Mad Max: Fury Road")

	matches, err := Apply(f, testMovies)
	assert.Nil(t, matches)
	assert.ErrorAs(t, err, &evalErr)
}

func TestCompilerCache(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2)).(*exprCompiler)

	first, err := compiler.Compile(`Year > 2000`)
	require.NoError(t, err)
	again, err := compiler.Compile(`  Year > 2000 `)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, compiler.cache.len())

	_, err = compiler.Compile(`Year > 1990`)
	require.NoError(t, err)
	_, err = compiler.Compile(`Year > 1980`)
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.cache.len())

	evicted, err := compiler.Compile(`Year > 2000`)
	require.NoError(t, err)
	assert.NotSame(t, first, evicted)
}

func TestProgramCacheOrder(t *testing.T) {
	cache := newProgramCache(2)
	a := &exprFilter{expression: "a"}
	b := &exprFilter{expression: "b"}
	c := &exprFilter{expression: "c"}

	cache.add(a)
	cache.add(b)
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.add(c)

	_, ok = cache.get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	got, ok := cache.get("a")
	assert.True(t, ok)
	assert.Same(t, a, got)

	cache.add(&exprFilter{expression: "a"})
	got, _ = cache.get("a")
	assert.Same(t, a, got, "first program for an expression is kept")
	assert.Equal(t, 2, cache.len())
}
