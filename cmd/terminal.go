package cmd

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/ca-srg/goodreader/internal/goodreads"
	"github.com/ca-srg/goodreader/internal/pager"
)

// Seams replaced by tests.
var (
	stdinIsTerminal  = func() bool { return isTerminal(os.Stdin) }
	stdoutIsTerminal = func() bool { return isTerminal(os.Stdout) }
	stderrIsTerminal = func() bool { return isTerminal(os.Stderr) }
	newPrompter      = func() pager.Prompter { return pager.NewLinerPrompter() }
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// pageProgress shows how many listing pages have been fetched.
type pageProgress struct {
	bar *progressbar.ProgressBar
}

// newPageProgress returns nil when progress should not be drawn.
func newPageProgress(w io.Writer, maxPages int, description string) *pageProgress {
	if maxPages < 2 {
		return nil
	}
	bar := progressbar.NewOptions(maxPages,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	return &pageProgress{bar: bar}
}

// observer adapts the bar to the client's page callback. A nil progress observes nothing.
func (p *pageProgress) observer() goodreads.PageObserver {
	if p == nil {
		return nil
	}
	return func(page, items int) {
		_ = p.bar.Set(page)
	}
}

func (p *pageProgress) finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
