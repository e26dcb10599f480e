package goodreads

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor pulls the values of one field out of a scope. Returning false means
// the field is absent, which is a normal outcome and not an error.
type Extractor interface {
	Extract(scope *Scope) ([]string, bool)
}

// Scope is the part of a document a set of fields is read from: a whole page or one result row.
type Scope struct {
	sel      *goquery.Selection
	ldParsed bool
	ld       []map[string]interface{}
}

// NewScope wraps a selection. JSON-LD blocks inside it are decoded on first use.
func NewScope(sel *goquery.Selection) *Scope {
	return &Scope{sel: sel}
}

func (s *Scope) jsonLD() []map[string]interface{} {
	if s.ldParsed {
		return s.ld
	}
	s.ldParsed = true
	s.sel.Find(`script[type="application/ld+json"]`).Each(func(_ int, script *goquery.Selection) {
		var raw interface{}
		if err := json.Unmarshal([]byte(script.Text()), &raw); err != nil {
			return
		}
		s.ld = append(s.ld, flattenLD(raw)...)
	})
	return s.ld
}

func flattenLD(raw interface{}) []map[string]interface{} {
	switch v := raw.(type) {
	case []interface{}:
		var out []map[string]interface{}
		for _, item := range v {
			out = append(out, flattenLD(item)...)
		}
		return out
	case map[string]interface{}:
		out := []map[string]interface{}{v}
		if graph, ok := v["@graph"]; ok {
			out = append(out, flattenLD(graph)...)
		}
		return out
	default:
		return nil
	}
}

// Field is one expected value with the strategies that may find it, tried in order.
type Field struct {
	Name       string
	Strategies []Extractor
}

// Values returns the output of the first strategy that finds the field.
func (f Field) Values(scope *Scope) ([]string, bool) {
	for _, strategy := range f.Strategies {
		if values, ok := strategy.Extract(scope); ok {
			return values, true
		}
	}
	return nil, false
}

// Value is Values for single valued fields.
func (f Field) Value(scope *Scope) (string, bool) {
	values, ok := f.Values(scope)
	if !ok {
		return "", false
	}
	return values[0], true
}

// textExtractor reads the collapsed text of the first (or every) node matching a selector.
type textExtractor struct {
	selector string
	all      bool
}

func byText(selector string) Extractor    { return textExtractor{selector: selector} }
func byTextAll(selector string) Extractor { return textExtractor{selector: selector, all: true} }

func (e textExtractor) Extract(scope *Scope) ([]string, bool) {
	matches := scope.sel.Find(e.selector)
	if !e.all {
		matches = matches.First()
	}

	var values []string
	matches.Each(func(_ int, node *goquery.Selection) {
		if text := collapseSpace(node.Text()); text != "" {
			values = append(values, text)
		}
	})
	return values, len(values) > 0
}

// attrExtractor reads an attribute of the first node matching a selector.
type attrExtractor struct {
	selector string
	attr     string
}

func byAttr(selector, attr string) Extractor { return attrExtractor{selector: selector, attr: attr} }

func (e attrExtractor) Extract(scope *Scope) ([]string, bool) {
	value, ok := scope.sel.Find(e.selector).First().Attr(e.attr)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return nil, false
	}
	return []string{value}, true
}

// htmlExtractor returns the inner markup of the first match, for later cleanup.
type htmlExtractor struct {
	selector string
}

func byHTML(selector string) Extractor { return htmlExtractor{selector: selector} }

func (e htmlExtractor) Extract(scope *Scope) ([]string, bool) {
	node := scope.sel.Find(e.selector).First()
	if node.Length() == 0 {
		return nil, false
	}
	markup, err := node.Html()
	if err != nil || strings.TrimSpace(markup) == "" {
		return nil, false
	}
	return []string{markup}, true
}

// metaExtractor reads <meta property|name=... content=...>.
type metaExtractor struct {
	name string
}

func byMeta(name string) Extractor { return metaExtractor{name: name} }

func (e metaExtractor) Extract(scope *Scope) ([]string, bool) {
	selector := `meta[property="` + e.name + `"], meta[name="` + e.name + `"]`
	return attrExtractor{selector: selector, attr: "content"}.Extract(scope)
}

// jsonLDExtractor walks a path through the first JSON-LD object of the given @type.
// Arrays along the path fan out, so author[].name yields every author.
type jsonLDExtractor struct {
	objectType string
	path       []string
}

func byJSONLD(objectType string, path ...string) Extractor {
	return jsonLDExtractor{objectType: objectType, path: path}
}

func (e jsonLDExtractor) Extract(scope *Scope) ([]string, bool) {
	for _, obj := range scope.jsonLD() {
		if e.objectType != "" && !hasLDType(obj, e.objectType) {
			continue
		}
		if values := walkLD(obj, e.path); len(values) > 0 {
			return values, true
		}
	}
	return nil, false
}

func hasLDType(obj map[string]interface{}, want string) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == want
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func walkLD(node interface{}, path []string) []string {
	switch v := node.(type) {
	case []interface{}:
		var out []string
		for _, item := range v {
			out = append(out, walkLD(item, path)...)
		}
		return out
	case map[string]interface{}:
		if len(path) == 0 {
			return nil
		}
		return walkLD(v[path[0]], path[1:])
	}

	if len(path) > 0 {
		return nil
	}
	switch v := node.(type) {
	case string:
		if s := collapseSpace(v); s != "" {
			return []string{s}
		}
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(v)}
	}
	return nil
}

// patternExtractor applies a regular expression to another strategy's values and
// keeps the first capture group of the first value that matches.
type patternExtractor struct {
	inner   Extractor
	pattern *regexp.Regexp
}

func byPattern(inner Extractor, pattern *regexp.Regexp) Extractor {
	return patternExtractor{inner: inner, pattern: pattern}
}

func (e patternExtractor) Extract(scope *Scope) ([]string, bool) {
	values, ok := e.inner.Extract(scope)
	if !ok {
		return nil, false
	}
	for _, value := range values {
		if m := e.pattern.FindStringSubmatch(value); len(m) > 1 && m[1] != "" {
			return []string{m[1]}, true
		}
	}
	return nil, false
}
