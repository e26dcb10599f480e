package goodreads

import (
	"context"
	"net/url"
	"strings"

	"github.com/ca-srg/goodreader/internal/logger"
	"github.com/ca-srg/goodreader/internal/metrics"
	"github.com/ca-srg/goodreader/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PageObserver is told about every listing page as soon as it is parsed.
type PageObserver func(page, items int)

// Client runs the build, fetch, parse sequence for each kind of lookup.
type Client struct {
	builder *Builder
	fetcher *Fetcher
}

// NewClient wires a builder and a fetcher together.
func NewClient(builder *Builder, fetcher *Fetcher) *Client {
	return &Client{builder: builder, fetcher: fetcher}
}

// New builds a client from the root config.
func New(cfg *types.Config, opts ...FetcherOption) (*Client, error) {
	builder, err := NewBuilder(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return NewClient(builder, NewFetcher(FetcherConfigFrom(cfg), opts...)), nil
}

// Search looks books up by keyword. With quick set it uses the JSON autocomplete endpoint.
func (c *Client) Search(ctx context.Context, term string, quick bool, limit int) ([]types.Book, error) {
	kind := KindSearch
	parse := ParseSearch
	if quick {
		kind = KindSearchQuick
		parse = ParseAutocomplete
	}
	return c.books(ctx, kind, term, limit, parse)
}

// Author looks books up by author name.
func (c *Client) Author(ctx context.Context, term string, limit int) ([]types.Book, error) {
	return c.books(ctx, KindAuthor, term, limit, ParseSearch)
}

func (c *Client) books(ctx context.Context, kind Kind, term string, limit int, parse func([]byte, string) ([]types.Book, error)) (books []types.Book, err error) {
	ctx, span := c.startSpan(ctx, "goodreads.client."+string(kind))
	defer func() { endSpan(span, len(books), err) }()

	target, err := c.builder.Build(kind, term, 1)
	if err != nil {
		return nil, err
	}

	resp, err := c.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	books, err = parse(resp.Body, resp.URL)
	if err != nil {
		return nil, withURL(err, resp.URL)
	}
	metrics.RecordParsed(ctx, string(kind), len(books))

	if len(books) == 0 {
		return nil, emptyResult("no books found for %q", target.Query.Term())
	}
	return truncate(books, limit), nil
}

// ISBN looks a single book up by its ISBN.
func (c *Client) ISBN(ctx context.Context, isbn string) (book *types.Book, err error) {
	ctx, span := c.startSpan(ctx, "goodreads.client.isbn")
	defer func() {
		count := 0
		if book != nil {
			count = 1
		}
		endSpan(span, count, err)
	}()

	target, err := c.builder.Build(KindISBN, isbn, 1)
	if err != nil {
		return nil, err
	}

	resp, err := c.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	// Unknown ISBNs are redirected to the search page.
	if final, perr := url.Parse(resp.URL); perr == nil && strings.HasPrefix(final.Path, "/search") {
		return nil, emptyResult("no book found for ISBN %s", target.Query.Term())
	}

	book, err = ParseBook(resp.Body, resp.URL)
	if err != nil {
		return nil, withURL(err, resp.URL)
	}
	metrics.RecordParsed(ctx, string(KindISBN), 1)
	return book, nil
}

// Genres walks the genre index until the last page or maxPages. Duplicate slugs are dropped.
func (c *Client) Genres(ctx context.Context, maxPages int, observe PageObserver) (genres []types.Genre, err error) {
	ctx, span := c.startSpan(ctx, "goodreads.client.genres")
	defer func() { endSpan(span, len(genres), err) }()

	if maxPages < 1 {
		maxPages = 1
	}

	seen := make(map[string]struct{})
	for page := 1; page <= maxPages; page++ {
		target, err := c.builder.Build(KindGenreList, "", page)
		if err != nil {
			return nil, err
		}

		resp, err := c.fetcher.Fetch(ctx, target)
		if err != nil {
			if IsEmptyResult(err) && page > 1 {
				break
			}
			return nil, err
		}

		pageGenres, hasNext, err := ParseGenreList(resp.Body, resp.URL)
		if err != nil {
			return nil, withURL(err, resp.URL)
		}
		if page == 1 && len(pageGenres) == 0 && !hasNext {
			return nil, parseError(nil, "genre list page has no genres")
		}

		for _, g := range pageGenres {
			if _, dup := seen[g.Slug]; dup {
				continue
			}
			seen[g.Slug] = struct{}{}
			genres = append(genres, g)
		}
		if observe != nil {
			observe(page, len(pageGenres))
		}
		logger.For(ctx).WithField("page", page).WithField("genres", len(pageGenres)).Debug("parsed genre list page")

		if !hasNext {
			break
		}
	}

	metrics.RecordParsed(ctx, string(KindGenreList), len(genres))
	if len(genres) == 0 {
		return nil, emptyResult("no genres found")
	}
	return genres, nil
}

// Genre fetches a genre's landing page. An unknown genre is an EmptyResult.
func (c *Client) Genre(ctx context.Context, name string) (genre *types.Genre, err error) {
	ctx, span := c.startSpan(ctx, "goodreads.client.genre")
	defer func() {
		count := 0
		if genre != nil {
			count = 1
		}
		endSpan(span, count, err)
	}()

	target, err := c.builder.Build(KindGenreDetail, name, 1)
	if err != nil {
		return nil, err
	}

	resp, err := c.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	genre, err = ParseGenre(resp.Body, target.Query.Term(), resp.URL)
	if err != nil {
		return nil, withURL(err, resp.URL)
	}
	return genre, nil
}

// GenreBooks collects books from a genre shelf, up to maxPages pages and limit books.
func (c *Client) GenreBooks(ctx context.Context, slug string, maxPages, limit int, observe PageObserver) (books []types.Book, err error) {
	ctx, span := c.startSpan(ctx, "goodreads.client.genre_books")
	defer func() { endSpan(span, len(books), err) }()

	if maxPages < 1 {
		maxPages = 1
	}

	for page := 1; page <= maxPages; page++ {
		target, err := c.builder.Build(KindGenreBooks, slug, page)
		if err != nil {
			return nil, err
		}

		resp, err := c.fetcher.Fetch(ctx, target)
		if err != nil {
			if IsEmptyResult(err) && page > 1 {
				break
			}
			return nil, err
		}

		pageBooks, hasNext, err := ParseShelf(resp.Body, resp.URL)
		if err != nil {
			return nil, withURL(err, resp.URL)
		}
		books = append(books, pageBooks...)
		if observe != nil {
			observe(page, len(pageBooks))
		}

		if !hasNext || (limit > 0 && len(books) >= limit) {
			break
		}
	}

	metrics.RecordParsed(ctx, string(KindGenreBooks), len(books))
	if len(books) == 0 {
		return nil, emptyResult("no books found in genre %q", slug)
	}
	return truncate(books, limit), nil
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return goodreadsTracer.Start(ctx, name)
}

func endSpan(span trace.Span, records int, err error) {
	span.SetAttributes(attribute.Int("goodreads.records", records))
	if err != nil && !IsEmptyResult(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
	}
	span.End()
}

func withURL(err error, pageURL string) error {
	if lookupErr, ok := err.(*LookupError); ok && lookupErr.URL == "" {
		lookupErr.URL = pageURL
	}
	return err
}

func truncate(books []types.Book, limit int) []types.Book {
	if limit > 0 && len(books) > limit {
		return books[:limit]
	}
	return books
}
