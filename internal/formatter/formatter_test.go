package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ca-srg/goodreader/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func dune() types.Book {
	return types.Book{
		Title:         "Dune",
		Authors:       []string{"Frank Herbert"},
		ISBN:          "9780441013593",
		Rating:        floatPtr(4.27),
		RatingsCount:  intPtr(1416325),
		PublishedYear: intPtr(1965),
		Genres:        []string{"Science Fiction", "Fiction"},
		URL:           "https://www.goodreads.com/book/show/44767458-dune",
		CoverURL:      "https://images.example.com/books/dune.jpg",
		Description:   "Set on the desert planet Arrakis.",
	}
}

func TestEmptyInputsPrintNoResults(t *testing.T) {
	assert.Equal(t, "No results.\n", Books(nil, Options{}))
	assert.Equal(t, "No results.\n", Books([]types.Book{}, Options{}))
	assert.Equal(t, "No results.\n", Genres(nil))
	assert.Equal(t, "No results.\n", Book(nil, Options{}))
}

func TestBooks(t *testing.T) {
	books := []types.Book{
		dune(),
		{Title: "The Unrated Manuscript"},
	}

	want := `1. Dune
   by Frank Herbert
   Rating: 4.27 (1416325 ratings) | Published: 1965
   https://www.goodreads.com/book/show/44767458-dune
   Set on the desert planet Arrakis.

2. The Unrated Manuscript
   by Unknown Author
`
	assert.Equal(t, want, Books(books, Options{}))
}

func TestBookDetail(t *testing.T) {
	book := dune()

	want := `Title:      Dune
Authors:    Frank Herbert
ISBN:       9780441013593
Rating:     4.27 (1416325 ratings)
Published:  1965
Genres:     Science Fiction, Fiction
URL:        https://www.goodreads.com/book/show/44767458-dune
Cover:      https://images.example.com/books/dune.jpg

Set on the desert planet Arrakis.
`
	assert.Equal(t, want, Book(&book, Options{}))
}

func TestBookDetailSkipsAbsentFields(t *testing.T) {
	out := Book(&types.Book{Title: "Untitled Draft"}, Options{})
	assert.Equal(t, "Title:      Untitled Draft\nAuthors:    Unknown Author\n", out)
}

func TestLongDescriptionsAreWrapped(t *testing.T) {
	book := dune()
	book.Description = strings.Repeat("spice ", 40)

	out := Book(&book, Options{})
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 78, line)
	}
}

func TestGenres(t *testing.T) {
	genres := []types.Genre{
		{Name: "Fantasy", Slug: "fantasy", BookCount: intPtr(1234567)},
		{Name: "Horror", Slug: "horror"},
	}
	assert.Equal(t, "1. Fantasy (1234567 books)\n2. Horror\n", Genres(genres))
}

func TestGenreDetail(t *testing.T) {
	detail := types.GenreDetail{
		Genre: types.Genre{Name: "Fantasy", URL: "https://www.goodreads.com/genres/fantasy", Description: "Magic and more."},
		Books: []types.Book{{Title: "The Hobbit", Authors: []string{"J.R.R. Tolkien"}}},
	}

	want := `Genre:      Fantasy
URL:        https://www.goodreads.com/genres/fantasy

Magic and more.

1. The Hobbit
   by J.R.R. Tolkien
`
	assert.Equal(t, want, GenreDetail(detail, Options{}))

	detail.Books = nil
	assert.True(t, strings.HasSuffix(GenreDetail(detail, Options{}), "\nNo results.\n"))
}

func TestBookLine(t *testing.T) {
	assert.Equal(t, "Dune by Frank Herbert [4.27 (1416325 ratings)]", BookLine(dune()))
	assert.Equal(t, "Draft by Unknown Author", BookLine(types.Book{Title: "Draft"}))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "short text", 20, "short text"},
		{"unlimited", "a long description that stays whole", 0, "a long description that stays whole"},
		{"word boundary", "Set on the desert planet Arrakis", 20, "Set on the desert..."},
		{"collapses whitespace", "  a\n\n b  ", 10, "a b"},
		{"tiny width", "abcdef", 2, "..."},
		{"wide runes", "砂の惑星のデューン物語", 10, "砂の惑..."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.width))
		})
	}
}

func TestJSON(t *testing.T) {
	out, err := JSON([]types.Book(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	out, err = JSON(types.GenreDetail{Genre: types.Genre{Name: "Horror", Slug: "horror"}})
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, []interface{}{}, decoded["books"])

	book := dune()
	out, err = JSON(&book)
	require.NoError(t, err)
	assert.Contains(t, out, `"ratings_count": 1416325`)
	assert.Contains(t, out, `"published_year": 1965`)

	out, err = JSON([]types.Book{{Title: "Draft"}})
	require.NoError(t, err)
	assert.NotContains(t, out, "rating")
}
