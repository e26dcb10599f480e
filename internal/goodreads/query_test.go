package goodreads

import (
	"net/url"
	"strings"
	"testing"

	"github.com/ca-srg/goodreader/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder("https://www.goodreads.com/")
	require.NoError(t, err)
	return b
}

func TestBuildKeywordAppearsOnce(t *testing.T) {
	b := newTestBuilder(t)
	keywords := []string{
		"dune",
		"books",
		"search",
		"author",
		"the lord of the rings",
		"c++ & go?",
		"100% pure",
		"ドーン",
		"a/b#c",
		"search_type=books",
	}

	for _, kind := range []Kind{KindSearch, KindAuthor, KindSearchQuick} {
		for _, keyword := range keywords {
			kind, keyword := kind, keyword
			t.Run(string(kind)+"/"+keyword, func(t *testing.T) {
				target, err := b.Build(kind, keyword, 1)
				require.NoError(t, err)

				u, err := url.Parse(target.URL)
				require.NoError(t, err)
				assert.Equal(t, "https", u.Scheme)
				assert.Equal(t, "www.goodreads.com", u.Host)
				assert.Equal(t, []string{keyword}, u.Query()["q"])
				assert.Equal(t, 1, strings.Count(target.URL, "q="+url.QueryEscape(keyword)))
			})
		}
	}
}

func TestBuildTargets(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		name string
		kind Kind
		term string
		page int
		want string
	}{
		{"search", KindSearch, "dune", 1, "https://www.goodreads.com/search?q=dune&search_type=books"},
		{"search second page", KindSearch, "dune", 2, "https://www.goodreads.com/search?page=2&q=dune&search_type=books"},
		{"author", KindAuthor, "frank herbert", 1, "https://www.goodreads.com/search?q=frank+herbert&search%5Bfield%5D=author&search_type=books"},
		{"quick", KindSearchQuick, "dune", 1, "https://www.goodreads.com/book/auto_complete?format=json&q=dune"},
		{"isbn", KindISBN, "978-0-441-01359-3", 1, "https://www.goodreads.com/book/isbn/9780441013593"},
		{"isbn10 with x", KindISBN, "0-8044-2957-x", 1, "https://www.goodreads.com/book/isbn/080442957X"},
		{"genre list", KindGenreList, "", 3, "https://www.goodreads.com/genres/list?page=3"},
		{"genre list clamps page", KindGenreList, "", 0, "https://www.goodreads.com/genres/list?page=1"},
		{"genre detail", KindGenreDetail, "Science Fiction", 1, "https://www.goodreads.com/genres/science-fiction"},
		{"genre books", KindGenreBooks, "science fiction", 2, "https://www.goodreads.com/shelf/show/science-fiction?page=2"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			target, err := b.Build(tt.kind, tt.term, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, target.URL)
			assert.Equal(t, tt.kind, target.Query.Kind())
		})
	}
}

func TestBuildNormalizesTerm(t *testing.T) {
	b := newTestBuilder(t)

	target, err := b.Build(KindSearch, "  the   hobbit  ", 1)
	require.NoError(t, err)
	assert.Equal(t, "the hobbit", target.Query.Term())
	assert.Equal(t, 1, target.Query.Page())
}

func TestBuildRejectsBadTerms(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		name string
		kind Kind
		term string
	}{
		{"empty search", KindSearch, ""},
		{"blank author", KindAuthor, "    "},
		{"control characters", KindSearch, "dune\x00"},
		{"tab inside term", KindSearch, "dune\tmessiah"},
		{"trailing newline", KindAuthor, "frank herbert\n"},
		{"carriage return in genre", KindGenreDetail, "science\rfiction"},
		{"too long", KindSearch, strings.Repeat("a", MaxTermLength+1)},
		{"invalid utf8", KindSearchQuick, "\xff\xfe"},
		{"empty isbn", KindISBN, " - - "},
		{"isbn with letters", KindISBN, "978abc"},
		{"isbn too long", KindISBN, strings.Repeat("1", 18)},
		{"genre without letters", KindGenreDetail, "!!!"},
		{"unknown kind", Kind("shelves"), "x"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tt.kind, tt.term, 1)
			require.Error(t, err)
			assert.True(t, IsKind(err, types.ErrorKindInvalidArgument), "got %v", err)
		})
	}
}

func TestNewBuilderRejectsRelativeBase(t *testing.T) {
	_, err := NewBuilder("/just/a/path")
	require.Error(t, err)
	assert.True(t, IsKind(err, types.ErrorKindInvalidArgument))
}

func TestBuilderKeepsBasePath(t *testing.T) {
	b, err := NewBuilder("http://127.0.0.1:9000/mirror/")
	require.NoError(t, err)

	target, err := b.Build(KindISBN, "9780441013593", 1)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/mirror/book/isbn/9780441013593", target.URL)
}
