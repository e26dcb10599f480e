package cmd

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-srg/goodreader/internal/goodreads"
	"github.com/ca-srg/goodreader/internal/goodreads/goodreadstest"
	"github.com/ca-srg/goodreader/internal/types"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: ExitOK},
		{name: "empty result", err: &goodreads.LookupError{Kind: types.ErrorKindEmptyResult}, want: ExitOK},
		{name: "invalid argument", err: usageError("bad"), want: ExitInvalidArgument},
		{name: "network", err: &goodreads.LookupError{Kind: types.ErrorKindNetwork}, want: ExitNetwork},
		{name: "http", err: &goodreads.LookupError{Kind: types.ErrorKindHTTP}, want: ExitHTTP},
		{name: "parse", err: &goodreads.LookupError{Kind: types.ErrorKindParse}, want: ExitParse},
		{name: "wrapped parse", err: fmt.Errorf("genre: %w", &goodreads.LookupError{Kind: types.ErrorKindParse}), want: ExitParse},
		{name: "unclassified", err: errors.New("boom"), want: ExitFailure},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestUsageErrors(t *testing.T) {
	newTestSite(t, nil)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown command", args: []string{"lookup", "dune"}},
		{name: "unknown flag", args: []string{"search", "--fast", "dune"}},
		{name: "missing keyword", args: []string{"search"}},
		{name: "blank keyword", args: []string{"author", "   "}},
		{name: "genres takes no args", args: []string{"genres", "fantasy"}},
		{name: "negative limit", args: []string{"search", "--limit", "-1", "dune"}},
		{name: "zero timeout", args: []string{"search", "--timeout", "0s", "dune"}},
		{name: "empty user agent", args: []string{"search", "--user-agent", " ", "dune"}},
		{name: "zero genre pages", args: []string{"genres", "--pages", "0"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			result := runCLI(t, tt.args...)
			require.Error(t, result.err)
			assert.Equal(t, ExitInvalidArgument, ExitCode(result.err))
		})
	}
}

func TestConfigFailureIsUsageError(t *testing.T) {
	newTestSite(t, nil)
	t.Setenv("GOODREADER_BASE_URL", "ftp://example.com")

	result := runCLI(t, "search", "dune")
	require.Error(t, result.err)
	assert.Equal(t, ExitInvalidArgument, ExitCode(result.err))
	assert.Contains(t, result.err.Error(), "failed to load configuration")
}

func TestTimeoutIsNetworkError(t *testing.T) {
	newTestSite(t, map[string]goodreadstest.Route{
		"/search": {Fixture: "search_dune.html", Delay: 2 * time.Second},
	})

	start := time.Now()
	result := runCLI(t, "search", "--timeout", "100ms", "dune")
	require.Error(t, result.err)
	assert.Equal(t, ExitNetwork, ExitCode(result.err))
	assert.Contains(t, result.err.Error(), "request timed out")
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Empty(t, result.stdout)
}

func TestHTTPAndParseFailures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		newTestSite(t, map[string]goodreadstest.Route{
			"/search": {Status: 503, Body: "maintenance"},
		})

		result := runCLI(t, "search", "dune")
		assert.Equal(t, ExitHTTP, ExitCode(result.err))
	})

	t.Run("layout changed", func(t *testing.T) {
		newTestSite(t, map[string]goodreadstest.Route{
			"/search": {Fixture: "layout_changed.html"},
		})

		result := runCLI(t, "search", "dune")
		assert.Equal(t, ExitParse, ExitCode(result.err))
	})
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	site := newTestSite(t, map[string]goodreadstest.Route{
		"/search": {Fixture: "search_dune.html"},
	})
	t.Setenv("GOODREADER_BASE_URL", "http://127.0.0.1:1")

	result := runCLI(t, "search", "--base-url", site.URL+"/", "--user-agent", "shelf-bot/2.0", "dune")
	require.NoError(t, result.err)
	assert.Equal(t, []string{"shelf-bot/2.0"}, site.UserAgents())
}
