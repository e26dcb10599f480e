package goodreads

import (
	"bytes"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ca-srg/goodreader/internal/genrematch"
	"github.com/ca-srg/goodreader/internal/types"
)

var (
	avgRatingAfterRe  = regexp.MustCompile(`(?i)avg rating\s+([0-9.]+)`)
	avgRatingBeforeRe = regexp.MustCompile(`(?i)([0-9.]+)\s+avg rating`)
	ratingsCountRe    = regexp.MustCompile(`(?i)([0-9][0-9,]*)\s+ratings`)
	publishedRe       = regexp.MustCompile(`(?i)published\s+(?:[A-Za-z]+\s+)?(?:\d{1,2},\s+)?(\d{4})`)
	bookCountRe       = regexp.MustCompile(`(?i)([0-9][0-9,]*)\s+books`)
)

// Book page fields. JSON-LD comes first; the DOM is the fallback when the
// structured block is missing or incomplete. The title strategies double as the
// book page landmark, so none of them may match generic page metadata.
var (
	bookTitleField = Field{Name: "title", Strategies: []Extractor{
		byJSONLD("Book", "name"),
		byText(`h1[data-testid="bookTitle"]`),
		byText("h1#bookTitle"),
	}}
	bookAuthorsField = Field{Name: "authors", Strategies: []Extractor{
		byJSONLD("Book", "author", "name"),
		byTextAll("span.ContributorLink__name"),
		byTextAll(`a.authorName span[itemprop="name"]`),
	}}
	bookISBNField = Field{Name: "isbn", Strategies: []Extractor{
		byJSONLD("Book", "isbn"),
		byMeta("books:isbn"),
	}}
	bookRatingField = Field{Name: "rating", Strategies: []Extractor{
		byJSONLD("Book", "aggregateRating", "ratingValue"),
		byText("div.RatingStatistics__rating"),
		byText(`span[itemprop="ratingValue"]`),
	}}
	bookRatingsCountField = Field{Name: "ratings_count", Strategies: []Extractor{
		byJSONLD("Book", "aggregateRating", "ratingCount"),
		byPattern(byText(`[data-testid="ratingsCount"]`), ratingsCountRe),
	}}
	bookYearField = Field{Name: "published_year", Strategies: []Extractor{
		byPattern(byText(`p[data-testid="publicationInfo"]`), publishedRe),
	}}
	bookGenresField = Field{Name: "genres", Strategies: []Extractor{
		byTextAll(`[data-testid="genresList"] .BookPageMetadataSection__genreButton .Button__labelItem`),
		byTextAll(`[data-testid="genresList"] .Button__labelItem`),
	}}
	bookCoverField = Field{Name: "cover_url", Strategies: []Extractor{
		byJSONLD("Book", "image"),
		byAttr("div.BookCover__image img", "src"),
		byMeta("og:image"),
	}}
	bookDescriptionField = Field{Name: "description", Strategies: []Extractor{
		byHTML(`[data-testid="description"] .Formatted`),
		byMeta("og:description"),
	}}
	bookURLField = Field{Name: "url", Strategies: []Extractor{
		byAttr(`link[rel="canonical"]`, "href"),
		byMeta("og:url"),
	}}
)

// Result row fields shared by the search and shelf pages.
var (
	rowTitleField = Field{Name: "title", Strategies: []Extractor{
		byText(`a.bookTitle span[itemprop="name"]`),
		byText("a.bookTitle"),
	}}
	rowAuthorsField = Field{Name: "authors", Strategies: []Extractor{
		byTextAll(`a.authorName span[itemprop="name"]`),
		byTextAll("a.authorName"),
	}}
	rowURLField = Field{Name: "url", Strategies: []Extractor{
		byAttr("a.bookTitle", "href"),
	}}
	rowCoverField = Field{Name: "cover_url", Strategies: []Extractor{
		byAttr("img.bookCover", "src"),
		byAttr("img", "src"),
	}}
	rowRatingField = Field{Name: "rating", Strategies: []Extractor{
		byPattern(byText("span.minirating"), avgRatingBeforeRe),
		byPattern(byText("span.greyText.smallText"), avgRatingAfterRe),
	}}
	rowRatingsCountField = Field{Name: "ratings_count", Strategies: []Extractor{
		byPattern(byText("span.minirating"), ratingsCountRe),
		byPattern(byText("span.greyText.smallText"), ratingsCountRe),
	}}
	rowYearField = Field{Name: "published_year", Strategies: []Extractor{
		byPattern(byTextAll("span.greyText.smallText"), publishedRe),
	}}
)

// Genre page fields.
var (
	genreNameField = Field{Name: "name", Strategies: []Extractor{
		byText("div.genreHeader h1"),
		byMeta("og:title"),
	}}
	genreDescriptionField = Field{Name: "description", Strategies: []Extractor{
		byHTML("div.mediumText.reviewText"),
	}}
	genreLinkField = Field{Name: "name", Strategies: []Extractor{
		byText("a.mediumText.actionLinkLite"),
	}}
	genreHrefField = Field{Name: "url", Strategies: []Extractor{
		byAttr("a.mediumText.actionLinkLite", "href"),
	}}
	genreBookCountField = Field{Name: "book_count", Strategies: []Extractor{
		byPattern(byText("div.smallText"), bookCountRe),
	}}
)

func loadDocument(body []byte, what string) (*goquery.Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, parseError(nil, "empty %s response", what)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, parseError(err, "cannot read %s markup", what)
	}
	return doc, nil
}

func parseBase(pageURL string) *url.URL {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil
	}
	return base
}

// ParseBook reads a book page. The title is required and must come from the
// book markup itself; every other field may be absent.
func ParseBook(body []byte, pageURL string) (*types.Book, error) {
	doc, err := loadDocument(body, "book page")
	if err != nil {
		return nil, err
	}

	scope := NewScope(doc.Selection)
	title, ok := bookTitleField.Value(scope)
	if !ok {
		return nil, parseError(nil, "unrecognized book page: no title found")
	}

	base := parseBase(pageURL)
	book := &types.Book{Title: title, URL: pageURL}

	if authors, ok := bookAuthorsField.Values(scope); ok {
		book.Authors = dedupe(authors)
	}
	if isbn, ok := bookISBNField.Value(scope); ok {
		book.ISBN = isbn
	}
	if rating, ok := bookRatingField.Value(scope); ok {
		book.Rating = parseRating(rating)
	}
	if count, ok := bookRatingsCountField.Value(scope); ok {
		book.RatingsCount = parseCount(count)
	}
	if year, ok := bookYearField.Value(scope); ok {
		book.PublishedYear = parseYear(year)
	}
	if genres, ok := bookGenresField.Values(scope); ok {
		book.Genres = filterGenreLabels(genres)
	}
	if cover, ok := bookCoverField.Value(scope); ok {
		book.CoverURL = resolveURL(base, cover)
	}
	if description, ok := bookDescriptionField.Value(scope); ok {
		book.Description = htmlToText(description)
	}
	if canonical, ok := bookURLField.Value(scope); ok {
		book.URL = resolveURL(base, canonical)
	}

	return book, nil
}

func filterGenreLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if strings.HasPrefix(label, "...") {
			continue
		}
		out = append(out, label)
	}
	return dedupe(out)
}

// ParseSearch reads a search results page. A recognized page with no rows yields no books.
func ParseSearch(body []byte, pageURL string) ([]types.Book, error) {
	doc, err := loadDocument(body, "search page")
	if err != nil {
		return nil, err
	}

	if doc.Find("form.searchBox, table.tableList, div.searchSubNavContainer").Length() == 0 {
		return nil, parseError(nil, "unrecognized search page: no search form or results table")
	}

	rows := doc.Find(`tr[itemtype="http://schema.org/Book"]`)
	books := parseRows(rows, parseBase(pageURL))
	if rows.Length() > 0 && len(books) == 0 {
		return nil, parseError(nil, "unrecognized search page: %d result rows without titles", rows.Length())
	}
	return books, nil
}

// ParseShelf reads one page of a genre shelf and reports whether another page follows.
func ParseShelf(body []byte, pageURL string) ([]types.Book, bool, error) {
	doc, err := loadDocument(body, "shelf page")
	if err != nil {
		return nil, false, err
	}

	if doc.Find("div.leftContainer").Length() == 0 {
		return nil, false, parseError(nil, "unrecognized shelf page: no listing container")
	}

	items := doc.Find("div.leftContainer div.elementList")
	books := parseRows(items, parseBase(pageURL))
	if items.Length() > 0 && len(books) == 0 {
		return nil, false, parseError(nil, "unrecognized shelf page: %d entries without titles", items.Length())
	}
	return books, hasNextPage(doc), nil
}

func parseRows(rows *goquery.Selection, base *url.URL) []types.Book {
	books := make([]types.Book, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		scope := NewScope(row)
		title, ok := rowTitleField.Value(scope)
		if !ok {
			return
		}

		book := types.Book{Title: title}
		if authors, ok := rowAuthorsField.Values(scope); ok {
			book.Authors = dedupe(authors)
		}
		if href, ok := rowURLField.Value(scope); ok {
			book.URL = resolveURL(base, href)
		}
		if cover, ok := rowCoverField.Value(scope); ok {
			book.CoverURL = resolveURL(base, cover)
		}
		if rating, ok := rowRatingField.Value(scope); ok {
			book.Rating = parseRating(rating)
		}
		if count, ok := rowRatingsCountField.Value(scope); ok {
			book.RatingsCount = parseCount(count)
		}
		if year, ok := rowYearField.Value(scope); ok {
			book.PublishedYear = parseYear(year)
		}
		books = append(books, book)
	})
	return books
}

// ParseGenreList reads one page of the genre index and reports whether another page follows.
func ParseGenreList(body []byte, pageURL string) ([]types.Genre, bool, error) {
	doc, err := loadDocument(body, "genre list")
	if err != nil {
		return nil, false, err
	}

	stats := doc.Find("div.shelfStat")
	if stats.Length() == 0 && doc.Find("div.leftContainer").Length() == 0 {
		return nil, false, parseError(nil, "unrecognized genre list page: no genre entries")
	}

	base := parseBase(pageURL)
	genres := make([]types.Genre, 0, stats.Length())
	stats.Each(func(_ int, stat *goquery.Selection) {
		scope := NewScope(stat)
		name, ok := genreLinkField.Value(scope)
		if !ok || !isPrintableASCII(name) {
			return
		}

		genre := types.Genre{Name: name, Slug: genrematch.Slugify(name)}
		if href, ok := genreHrefField.Value(scope); ok {
			genre.URL = resolveURL(base, href)
			if slug := slugFromHref(href); slug != "" {
				genre.Slug = slug
			}
		}
		if count, ok := genreBookCountField.Value(scope); ok {
			genre.BookCount = parseCount(count)
		}
		genres = append(genres, genre)
	})

	return genres, hasNextPage(doc), nil
}

// ParseGenre reads a genre's landing page.
func ParseGenre(body []byte, slug, pageURL string) (*types.Genre, error) {
	doc, err := loadDocument(body, "genre page")
	if err != nil {
		return nil, err
	}

	if doc.Find("div.genreHeader").Length() == 0 {
		return nil, parseError(nil, "unrecognized genre page: no genre header")
	}

	scope := NewScope(doc.Selection)
	genre := &types.Genre{Slug: slug, URL: pageURL}
	if name, ok := genreNameField.Value(scope); ok {
		genre.Name = name
	} else {
		genre.Name = genrematch.Titleize(slug)
	}
	if description, ok := genreDescriptionField.Value(scope); ok {
		genre.Description = htmlToText(description)
	}
	return genre, nil
}

func hasNextPage(doc *goquery.Document) bool {
	return doc.Find(".next_page").Not(".disabled").Length() > 0
}

func slugFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	dir, last := path.Split(strings.TrimRight(u.Path, "/"))
	if !strings.HasSuffix(dir, "/genres/") || last == "" {
		return ""
	}
	unescaped, err := url.PathUnescape(last)
	if err != nil {
		return last
	}
	return unescaped
}
