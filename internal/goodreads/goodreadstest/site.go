// Package goodreadstest serves recorded site pages from an httptest server.
package goodreadstest

import (
	"embed"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"
)

//go:embed testdata
var fixtures embed.FS

// Fixture returns a recorded page from testdata.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := fixtures.ReadFile(path.Join("testdata", name))
	if err != nil {
		t.Fatalf("missing fixture %s: %v", name, err)
	}
	return data
}

// Route describes the reply for one request path (optionally with its query string).
type Route struct {
	Status      int
	Fixture     string
	Body        string
	ContentType string
	Redirect    string
	Delay       time.Duration
}

// Site is a stand-in for the real site. Unknown paths answer 404.
type Site struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]Route
	requests []string
	agents   []string
}

// NewSite starts a server with the given routes. Keys are "/path" or "/path?query".
func NewSite(t testing.TB, routes map[string]Route) *Site {
	t.Helper()
	s := &Site{routes: make(map[string]Route)}
	for key, route := range routes {
		s.routes[key] = route
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

// Handle adds or replaces a route.
func (s *Site) Handle(key string, route Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[key] = route
}

// Requests lists the request URIs received so far.
func (s *Site) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// UserAgents lists the User-Agent header of every request received so far.
func (s *Site) UserAgents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.agents...)
}

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RequestURI())
	s.agents = append(s.agents, r.UserAgent())
	route, ok := s.routes[r.URL.RequestURI()]
	if !ok {
		route, ok = s.routes[r.URL.Path]
	}
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if route.Delay > 0 {
		select {
		case <-time.After(route.Delay):
		case <-r.Context().Done():
			return
		}
	}

	if route.Redirect != "" {
		http.Redirect(w, r, route.Redirect, http.StatusFound)
		return
	}

	body := []byte(route.Body)
	if route.Fixture != "" {
		data, err := fixtures.ReadFile(path.Join("testdata", route.Fixture))
		if err != nil {
			http.Error(w, "missing fixture "+route.Fixture, http.StatusInternalServerError)
			return
		}
		body = data
	}

	contentType := route.ContentType
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
		if strings.HasSuffix(route.Fixture, ".json") {
			contentType = "application/json"
		}
	}
	w.Header().Set("Content-Type", contentType)

	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
