package goodreads

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/ca-srg/goodreader/internal/types"
	"github.com/google/jsonschema-go/jsonschema"
)

// autocompleteSchema pins the fields quick search relies on. Anything else in
// the payload is ignored.
var autocompleteSchema = &jsonschema.Schema{
	Type: "array",
	Items: &jsonschema.Schema{
		Type:     "object",
		Required: []string{"title", "bookUrl"},
		Properties: map[string]*jsonschema.Schema{
			"title":         {Type: "string", MinLength: minLength(1)},
			"bookTitleBare": {Type: "string"},
			"bookUrl":       {Type: "string", MinLength: minLength(1)},
			"imageUrl":      {Type: "string"},
			"ratingsCount":  {Type: "integer"},
			"author": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"name": {Type: "string"},
				},
			},
		},
	},
}

func minLength(n int) *int { return &n }

var (
	resolveAutocompleteOnce sync.Once
	resolvedAutocomplete    *jsonschema.Resolved
	resolveAutocompleteErr  error
)

func autocompleteValidator() (*jsonschema.Resolved, error) {
	resolveAutocompleteOnce.Do(func() {
		resolvedAutocomplete, resolveAutocompleteErr = autocompleteSchema.Resolve(nil)
	})
	return resolvedAutocomplete, resolveAutocompleteErr
}

type autocompleteItem struct {
	Title         string          `json:"title"`
	BookTitleBare string          `json:"bookTitleBare"`
	BookURL       string          `json:"bookUrl"`
	ImageURL      string          `json:"imageUrl"`
	AvgRating     json.RawMessage `json:"avgRating"`
	RatingsCount  *int            `json:"ratingsCount"`
	Author        struct {
		Name string `json:"name"`
	} `json:"author"`
	Description struct {
		HTML string `json:"html"`
	} `json:"description"`
}

// ParseAutocomplete reads the JSON payload of the quick search endpoint.
func ParseAutocomplete(body []byte, pageURL string) ([]types.Book, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, parseError(nil, "empty autocomplete response")
	}

	var instance interface{}
	if err := json.Unmarshal(body, &instance); err != nil {
		return nil, parseError(err, "autocomplete response is not JSON")
	}

	validator, err := autocompleteValidator()
	if err != nil {
		return nil, parseError(err, "autocomplete schema is invalid")
	}
	if err := validator.Validate(instance); err != nil {
		return nil, parseError(err, "unrecognized autocomplete response")
	}

	var items []autocompleteItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, parseError(err, "unrecognized autocomplete response")
	}

	base := parseBase(pageURL)
	books := make([]types.Book, 0, len(items))
	for _, item := range items {
		title := collapseSpace(item.BookTitleBare)
		if title == "" {
			title = collapseSpace(item.Title)
		}

		book := types.Book{
			Title:        title,
			URL:          resolveURL(base, item.BookURL),
			CoverURL:     resolveURL(base, item.ImageURL),
			Rating:       parseRating(rawNumber(item.AvgRating)),
			RatingsCount: item.RatingsCount,
			Description:  htmlToText(item.Description.HTML),
		}
		if name := collapseSpace(item.Author.Name); name != "" {
			book.Authors = []string{name}
		}
		books = append(books, book)
	}
	return books, nil
}

// rawNumber accepts both "4.28" and 4.28.
func rawNumber(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		return unquoted
	}
	return text
}
