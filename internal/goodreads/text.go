package goodreads

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var plainText = newPlainTextPolicy()

func newPlainTextPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// htmlToText reduces a markup fragment to a single line of plain text.
func htmlToText(markup string) string {
	return collapseSpace(html.UnescapeString(plainText.Sanitize(markup)))
}

func parseRating(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || v > 5 {
		return nil
	}
	return &v
}

func parseCount(s string) *int {
	digits := strings.NewReplacer(",", "", ".", "", " ", "").Replace(strings.TrimSpace(s))
	v, err := strconv.Atoi(digits)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func parseYear(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 || v > 9999 {
		return nil
	}
	return &v
}

// resolveURL makes href absolute against base; unparsable hrefs are dropped.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// isPrintableASCII filters the genre names that break site URLs.
func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 32 || s[i] > 126 {
			return false
		}
	}
	return true
}

// dedupe keeps the first occurrence of each value.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
