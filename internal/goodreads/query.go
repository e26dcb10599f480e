package goodreads

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ca-srg/goodreader/internal/genrematch"
)

// Kind names the lookup a query performs.
type Kind string

const (
	KindSearch      Kind = "search"
	KindSearchQuick Kind = "search-quick"
	KindAuthor      Kind = "author"
	KindISBN        Kind = "isbn"
	KindGenreList   Kind = "genre-list"
	KindGenreDetail Kind = "genre-detail"
	KindGenreBooks  Kind = "genre-books"
)

// MaxTermLength bounds user supplied terms, in runes.
const MaxTermLength = 256

// Query is a validated lookup. Build it with Builder.Build; the zero value is not usable.
type Query struct {
	kind Kind
	term string
	page int
}

func (q Query) Kind() Kind   { return q.kind }
func (q Query) Term() string { return q.term }
func (q Query) Page() int    { return q.page }

// Target is a query together with the absolute URL that serves it.
type Target struct {
	Query Query
	URL   string
}

// Builder turns raw terms into request targets against one site root.
type Builder struct {
	base *url.URL
}

// NewBuilder parses the site root, e.g. https://www.goodreads.com.
func NewBuilder(baseURL string) (*Builder, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, invalidArgument("invalid base URL %q: %v", baseURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, invalidArgument("base URL %q must be an absolute http(s) URL", baseURL)
	}
	return &Builder{base: base}, nil
}

// Base returns the site root the builder resolves against.
func (b *Builder) Base() *url.URL {
	u := *b.base
	return &u
}

// Build validates term for kind and returns the request target.
// Page is only used by paginated kinds and defaults to 1.
func (b *Builder) Build(kind Kind, term string, page int) (Target, error) {
	if page < 1 {
		page = 1
	}

	q := Query{kind: kind, page: page}
	values := url.Values{}
	var path string

	switch kind {
	case KindSearch, KindAuthor:
		cleaned, err := cleanTerm(term)
		if err != nil {
			return Target{}, err
		}
		q.term = cleaned
		path = "/search"
		values.Set("q", cleaned)
		values.Set("search_type", "books")
		if kind == KindAuthor {
			values.Set("search[field]", "author")
		}
		if page > 1 {
			values.Set("page", strconv.Itoa(page))
		}
	case KindSearchQuick:
		cleaned, err := cleanTerm(term)
		if err != nil {
			return Target{}, err
		}
		q.term = cleaned
		path = "/book/auto_complete"
		values.Set("format", "json")
		values.Set("q", cleaned)
	case KindISBN:
		isbn, err := NormalizeISBN(term)
		if err != nil {
			return Target{}, err
		}
		q.term = isbn
		path = "/book/isbn/" + url.PathEscape(isbn)
	case KindGenreList:
		path = "/genres/list"
		values.Set("page", strconv.Itoa(page))
	case KindGenreDetail, KindGenreBooks:
		cleaned, err := cleanTerm(term)
		if err != nil {
			return Target{}, err
		}
		slug := genrematch.Slugify(cleaned)
		if slug == "" {
			return Target{}, invalidArgument("genre %q has no letters or digits", cleaned)
		}
		q.term = slug
		if kind == KindGenreDetail {
			path = "/genres/" + url.PathEscape(slug)
		} else {
			path = "/shelf/show/" + url.PathEscape(slug)
			values.Set("page", strconv.Itoa(page))
		}
	default:
		return Target{}, invalidArgument("unknown query kind %q", kind)
	}

	u := b.Base()
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = values.Encode()

	return Target{Query: q, URL: u.String()}, nil
}

func cleanTerm(term string) (string, error) {
	if !utf8.ValidString(term) {
		return "", invalidArgument("search term is not valid UTF-8")
	}
	// Checked before collapsing whitespace, which would swallow tabs and newlines.
	for _, r := range term {
		if unicode.IsControl(r) {
			return "", invalidArgument("search term contains control characters")
		}
	}

	cleaned := strings.Join(strings.Fields(term), " ")
	if cleaned == "" {
		return "", invalidArgument("search term must not be empty")
	}
	if utf8.RuneCountInString(cleaned) > MaxTermLength {
		return "", invalidArgument("search term is longer than %d characters", MaxTermLength)
	}
	return cleaned, nil
}

// NormalizeISBN drops spaces and hyphens and checks the remaining characters.
// The checksum is not verified; the site decides whether the id exists.
func NormalizeISBN(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r == '-' || r == ' ':
			continue
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		default:
			return "", invalidArgument("ISBN %q may only contain digits, X and hyphens", raw)
		}
	}

	isbn := b.String()
	if isbn == "" {
		return "", invalidArgument("ISBN must not be empty")
	}
	if len(isbn) > 17 {
		return "", invalidArgument("ISBN %q is too long", raw)
	}
	return isbn, nil
}
