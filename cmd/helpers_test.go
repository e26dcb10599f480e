package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ca-srg/goodreader/internal/goodreads/goodreadstest"
)

func captureOutput(t testing.TB, fn func()) string {
	t.Helper()
	readPipe, writePipe, err := os.Pipe()
	require.NoError(t, err)
	defer func() {
		_ = readPipe.Close()
	}()

	originalStdout := os.Stdout
	os.Stdout = writePipe
	defer func() {
		os.Stdout = originalStdout
	}()

	// Drain while fn writes so large listings cannot fill the pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, readPipe)
		done <- buf.Bytes()
	}()

	fn()

	require.NoError(t, writePipe.Close())
	return string(<-done)
}

// cliResult is what one goodreader invocation produced.
type cliResult struct {
	stdout string
	stderr string
	err    error
}

// newTestSite starts a fake site and points the environment at it.
func newTestSite(t *testing.T, routes map[string]goodreadstest.Route) *goodreadstest.Site {
	t.Helper()
	site := goodreadstest.NewSite(t, routes)
	t.Setenv("GOODREADER_BASE_URL", site.URL)
	t.Setenv("GOODREADER_RATE_LIMIT", "50")
	t.Setenv("GOODREADER_RATE_BURST", "10")
	t.Setenv("GOODREADER_CONFIG", "")
	t.Setenv("GOODREADER_METRICS_FILE", "")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return site
}

// runCLI executes the root command as a non-interactive process would.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	return runCLIWith(t, DependencyOverrides{}, args...)
}

func runCLIWith(t *testing.T, overrides DependencyOverrides, args ...string) cliResult {
	t.Helper()
	if overrides.Terminal == nil {
		terminal := false
		overrides.Terminal = &terminal
	}
	restore := OverrideDependencies(overrides)
	ResetCommandState()
	t.Cleanup(func() {
		restore()
		ResetCommandState()
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	})

	var stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetErr(&stderr)

	var result cliResult
	result.stdout = captureOutput(t, func() {
		result.err = execute(context.Background())
	})
	result.stderr = stderr.String()
	return result
}

func boolPtr(v bool) *bool { return &v }
