// Package formatter renders lookup results as terminal text or JSON.
// Every function is pure: it returns the text and never writes it.
package formatter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ca-srg/goodreader/internal/types"
	"github.com/kr/text"
	"github.com/mattn/go-runewidth"
)

// NoResults is printed in place of an empty listing.
const NoResults = "No results."

const (
	ellipsis   = "..."
	wrapColumn = 78
	labelWidth = 11
)

// Options tune the text rendering.
type Options struct {
	// DescriptionWidth caps descriptions, in display cells. Zero keeps them whole.
	DescriptionWidth int
}

// Books renders a numbered book listing.
func Books(books []types.Book, opts Options) string {
	if len(books) == 0 {
		return NoResults + "\n"
	}

	var b strings.Builder
	for i := range books {
		if i > 0 {
			b.WriteString("\n")
		}
		writeBookEntry(&b, i+1, &books[i], opts)
	}
	return b.String()
}

func writeBookEntry(b *strings.Builder, n int, book *types.Book, opts Options) {
	fmt.Fprintf(b, "%d. %s\n", n, book.Title)
	fmt.Fprintf(b, "   by %s\n", book.AuthorLine())
	if facts := bookFacts(book); facts != "" {
		fmt.Fprintf(b, "   %s\n", facts)
	}
	if book.URL != "" {
		fmt.Fprintf(b, "   %s\n", book.URL)
	}
	if description := Truncate(book.Description, opts.DescriptionWidth); description != "" {
		b.WriteString(indent(description, "   "))
	}
}

func bookFacts(book *types.Book) string {
	var parts []string
	if rating := book.RatingLine(); rating != "" {
		parts = append(parts, "Rating: "+rating)
	}
	if book.PublishedYear != nil {
		parts = append(parts, "Published: "+strconv.Itoa(*book.PublishedYear))
	}
	return strings.Join(parts, " | ")
}

// BookLine is the single line form used by the pager.
func BookLine(book types.Book) string {
	line := book.Title + " by " + book.AuthorLine()
	if rating := book.RatingLine(); rating != "" {
		line += " [" + rating + "]"
	}
	return line
}

// Book renders the detail view of one book.
func Book(book *types.Book, opts Options) string {
	if book == nil {
		return NoResults + "\n"
	}

	var b strings.Builder
	writeField(&b, "Title", book.Title)
	writeField(&b, "Authors", book.AuthorLine())
	writeField(&b, "ISBN", book.ISBN)
	writeField(&b, "Rating", book.RatingLine())
	if book.PublishedYear != nil {
		writeField(&b, "Published", strconv.Itoa(*book.PublishedYear))
	}
	writeField(&b, "Genres", strings.Join(book.Genres, ", "))
	writeField(&b, "URL", book.URL)
	writeField(&b, "Cover", book.CoverURL)

	if description := Truncate(book.Description, opts.DescriptionWidth); description != "" {
		b.WriteString("\n")
		b.WriteString(indent(description, ""))
	}
	return b.String()
}

// Genres renders the genre index.
func Genres(genres []types.Genre) string {
	if len(genres) == 0 {
		return NoResults + "\n"
	}

	var b strings.Builder
	for i, genre := range genres {
		fmt.Fprintf(&b, "%d. %s\n", i+1, GenreLine(genre))
	}
	return b.String()
}

// GenreLine is the single line form of a genre.
func GenreLine(genre types.Genre) string {
	if genre.BookCount == nil {
		return genre.Name
	}
	return fmt.Sprintf("%s (%d books)", genre.Name, *genre.BookCount)
}

// GenreDetail renders a genre header followed by its books.
func GenreDetail(detail types.GenreDetail, opts Options) string {
	var b strings.Builder
	writeField(&b, "Genre", detail.Genre.Name)
	writeField(&b, "URL", detail.Genre.URL)
	if description := Truncate(detail.Genre.Description, opts.DescriptionWidth); description != "" {
		b.WriteString("\n")
		b.WriteString(indent(description, ""))
	}
	b.WriteString("\n")
	b.WriteString(Books(detail.Books, opts))
	return b.String()
}

// JSON renders v as indented JSON. Nil slices come out as [].
func JSON(v interface{}) (string, error) {
	switch value := v.(type) {
	case []types.Book:
		if value == nil {
			v = []types.Book{}
		}
	case []types.Genre:
		if value == nil {
			v = []types.Genre{}
		}
	case types.GenreDetail:
		if value.Books == nil {
			value.Books = []types.Book{}
			v = value
		}
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	return string(out) + "\n", nil
}

// Truncate cuts s to width display cells, preferring a word boundary.
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}

	cut := runewidth.Truncate(s, width, "")
	if i := strings.LastIndex(cut, " "); i > len(cut)/2 {
		cut = cut[:i]
	}
	cut = strings.TrimRight(cut, " ,;:.")
	for runewidth.StringWidth(cut)+len(ellipsis) > width && cut != "" {
		r := []rune(cut)
		cut = strings.TrimRight(string(r[:len(r)-1]), " ")
	}
	return cut + ellipsis
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%-*s %s\n", labelWidth, label+":", value)
}

func indent(paragraph, prefix string) string {
	wrapped := text.Wrap(paragraph, wrapColumn-len(prefix))
	return text.Indent(wrapped, prefix) + "\n"
}
