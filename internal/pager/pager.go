// Package pager pages through a list on the terminal and optionally lets the
// user pick one entry.
package pager

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NoResults is printed instead of an empty page.
const NoResults = "No results."

// Options control one pagination session.
type Options struct {
	PageSize int
	// Header is printed above every page.
	Header string
	// PagePrompt replaces the default goto prompt.
	PagePrompt string
	// NoSelect disables picking an entry; the session only browses.
	NoSelect bool
}

// Pager renders pages to out and reads commands from a Prompter.
type Pager struct {
	out      io.Writer
	prompter Prompter
}

// New creates a pager.
func New(out io.Writer, prompter Prompter) *Pager {
	return &Pager{out: out, prompter: prompter}
}

// Paginate shows items page by page. It returns the 0-based index of the
// picked entry, or ok=false when the user quit, input ended, the list was
// empty or selection is disabled.
func (p *Pager) Paginate(items []string, opts Options) (index int, ok bool, err error) {
	if opts.PageSize <= 0 {
		return -1, false, errors.New("page size must be > 0")
	}

	total := len(items)
	if total == 0 {
		p.println(NoResults)
		return -1, false, nil
	}

	pages := (total + opts.PageSize - 1) / opts.PageSize
	pagePrompt := opts.PagePrompt
	if pagePrompt == "" {
		pagePrompt = fmt.Sprintf("Input page number 1..%d (q to quit): ", pages)
	}

	page := 1
	for {
		low, high := p.render(items, page, pages, opts)

		navPrompt := "n=next p=prev g=goto b=back q=quit: "
		if !opts.NoSelect {
			navPrompt = fmt.Sprintf("Select %d..%d | %s", low, high, navPrompt)
		}

		cmd, done, err := p.read(navPrompt)
		if done || err != nil {
			return -1, false, err
		}

		switch cmd {
		case "":
			continue
		case "q":
			return -1, false, nil
		case "n":
			if page < pages {
				page++
			} else {
				p.println("Already at last page.")
			}
			continue
		case "p", "b":
			if page > 1 {
				page--
			} else {
				p.println("Already at first page.")
			}
			continue
		case "g":
			target, done, err := p.read(pagePrompt)
			if done || err != nil {
				return -1, false, err
			}
			switch target {
			case "":
				continue
			case "q":
				return -1, false, nil
			}
			n, convErr := strconv.Atoi(target)
			if convErr != nil {
				p.println(fmt.Sprintf("Invalid input: %q. Enter a number 1..%d (q to quit).", target, pages))
				continue
			}
			if n < 1 || n > pages {
				p.println(fmt.Sprintf("Out of range. Enter a number 1..%d (q to quit).", pages))
				continue
			}
			page = n
			continue
		}

		if opts.NoSelect {
			p.println("Invalid input. Use n/p/g/b/q.")
			continue
		}

		pick, convErr := strconv.Atoi(cmd)
		if convErr != nil {
			p.println("Invalid input. Enter an item number or n/p/g/b/q.")
			continue
		}
		if pick < low || pick > high {
			p.println(fmt.Sprintf("Out of range. Enter %d..%d.", low, high))
			continue
		}
		return pick - 1, true, nil
	}
}

// render prints one page and returns the 1-based range it shows.
func (p *Pager) render(items []string, page, pages int, opts Options) (int, int) {
	start := (page - 1) * opts.PageSize
	end := start + opts.PageSize
	if end > len(items) {
		end = len(items)
	}

	if opts.Header != "" {
		p.println(opts.Header)
	}
	p.println(fmt.Sprintf("Page %d/%d (%d-%d of %d)", page, pages, start+1, end, len(items)))
	for i := start; i < end; i++ {
		p.println(fmt.Sprintf("%d. %s", i+1, items[i]))
	}
	p.println("")
	return start + 1, end
}

// read prompts once. done is set when input ended or was interrupted.
func (p *Pager) read(prompt string) (string, bool, error) {
	line, err := p.prompter.Prompt(prompt)
	if errors.Is(err, io.EOF) || errors.Is(err, ErrAborted) {
		p.println("")
		return "", true, nil
	}
	if err != nil {
		return "", true, fmt.Errorf("failed to read input: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(line)), false, nil
}

func (p *Pager) println(line string) {
	_, _ = fmt.Fprintln(p.out, line)
}
