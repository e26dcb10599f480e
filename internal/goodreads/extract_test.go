package goodreads

import (
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extractPage = `<html><head>
<meta property="og:title" content="Dune">
<meta name="description" content="  A desert planet.  ">
<script type="application/ld+json">{"@type":"WebSite","name":"Site"}</script>
<script type="application/ld+json">[
 {"@type":"Book","name":"Dune","author":[{"name":"Frank Herbert"},{"name":"Brian Herbert"}],
  "aggregateRating":{"ratingValue":4.27,"ratingCount":1416325},"bookFormat":"Paperback","inStock":true}
]</script>
<script type="application/ld+json">{"@graph":[{"@type":["Thing","Person"],"name":"Frank Herbert"}]}</script>
<script type="application/ld+json">{not json</script>
</head><body>
<h1 class="title">  Dune
   (Dune, #1) </h1>
<a class="author" href="/author/1">Frank   Herbert</a>
<a class="author" href="/author/2">Brian Herbert</a>
<a class="author" href="/author/3">   </a>
<div class="details">First published August 1, 1965</div>
<div class="blurb"><p>First part.</p><p>Second <i>part</i>.</p></div>
<div class="empty">   </div>
</body></html>`

func extractScope(t *testing.T) *Scope {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(extractPage))
	require.NoError(t, err)
	return NewScope(doc.Selection)
}

func TestTextExtractors(t *testing.T) {
	scope := extractScope(t)

	values, ok := byText("h1.title").Extract(scope)
	require.True(t, ok)
	assert.Equal(t, []string{"Dune (Dune, #1)"}, values)

	values, ok = byTextAll("a.author").Extract(scope)
	require.True(t, ok)
	assert.Equal(t, []string{"Frank Herbert", "Brian Herbert"}, values)

	_, ok = byText("div.empty").Extract(scope)
	assert.False(t, ok)
	_, ok = byText("span.missing").Extract(scope)
	assert.False(t, ok)
}

func TestAttrAndMetaExtractors(t *testing.T) {
	scope := extractScope(t)

	values, ok := byAttr("a.author", "href").Extract(scope)
	require.True(t, ok)
	assert.Equal(t, []string{"/author/1"}, values)

	_, ok = byAttr("a.author", "title").Extract(scope)
	assert.False(t, ok)

	values, ok = byMeta("og:title").Extract(scope)
	require.True(t, ok)
	assert.Equal(t, []string{"Dune"}, values)

	values, ok = byMeta("description").Extract(scope)
	require.True(t, ok)
	assert.Equal(t, []string{"A desert planet."}, values)
}

func TestHTMLExtractor(t *testing.T) {
	scope := extractScope(t)

	values, ok := byHTML("div.blurb").Extract(scope)
	require.True(t, ok)
	assert.Equal(t, "First part. Second part .", htmlToText(values[0]))

	_, ok = byHTML("div.empty").Extract(scope)
	assert.False(t, ok)
}

func TestJSONLDExtractor(t *testing.T) {
	scope := extractScope(t)

	tests := []struct {
		name       string
		objectType string
		path       []string
		want       []string
	}{
		{"string", "Book", []string{"name"}, []string{"Dune"}},
		{"array fans out", "Book", []string{"author", "name"}, []string{"Frank Herbert", "Brian Herbert"}},
		{"number", "Book", []string{"aggregateRating", "ratingValue"}, []string{"4.27"}},
		{"large number", "Book", []string{"aggregateRating", "ratingCount"}, []string{"1416325"}},
		{"bool", "Book", []string{"inStock"}, []string{"true"}},
		{"graph with type list", "Person", []string{"name"}, []string{"Frank Herbert"}},
		{"any type", "", []string{"name"}, []string{"Site"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			values, ok := byJSONLD(tt.objectType, tt.path...).Extract(scope)
			require.True(t, ok)
			assert.Equal(t, tt.want, values)
		})
	}

	_, ok := byJSONLD("Book", "isbn").Extract(scope)
	assert.False(t, ok)
	_, ok = byJSONLD("Movie", "name").Extract(scope)
	assert.False(t, ok)
	_, ok = byJSONLD("Book", "aggregateRating").Extract(scope)
	assert.False(t, ok, "objects are not leaf values")
}

func TestPatternExtractor(t *testing.T) {
	scope := extractScope(t)

	values, ok := byPattern(byText("div.details"), publishedRe).Extract(scope)
	require.True(t, ok)
	assert.Equal(t, []string{"1965"}, values)

	_, ok = byPattern(byText("h1.title"), regexp.MustCompile(`ISBN (\d+)`)).Extract(scope)
	assert.False(t, ok)
	_, ok = byPattern(byText("span.missing"), publishedRe).Extract(scope)
	assert.False(t, ok)
}

func TestFieldFallsBackInOrder(t *testing.T) {
	scope := extractScope(t)

	field := Field{Name: "title", Strategies: []Extractor{
		byText("h2.missing"),
		byJSONLD("Book", "name"),
		byText("h1.title"),
	}}
	value, ok := field.Value(scope)
	require.True(t, ok)
	assert.Equal(t, "Dune", value)

	absent := Field{Name: "isbn", Strategies: []Extractor{byText("span.isbn"), byMeta("books:isbn")}}
	value, ok = absent.Value(scope)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "Fish & Chips", htmlToText("<p>Fish &amp;   Chips</p>"))

	require.NotNil(t, parseRating(" 4.5 "))
	assert.InDelta(t, 4.5, *parseRating("4.5"), 1e-9)
	assert.Nil(t, parseRating("5.1"))
	assert.Nil(t, parseRating("n/a"))

	require.NotNil(t, parseCount("1,416,325"))
	assert.Equal(t, 1416325, *parseCount("1,416,325"))
	assert.Equal(t, 12345, *parseCount("12.345"))
	assert.Nil(t, parseCount("many"))

	assert.Equal(t, 1965, *parseYear("1965"))
	assert.Nil(t, parseYear("0"))

	assert.True(t, isPrintableASCII("Science Fiction"))
	assert.False(t, isPrintableASCII("Ciencia ficción"))
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"a", "b", "a"}))
}
