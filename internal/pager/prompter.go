package pager

import (
	"errors"
	"io"
	"sync"

	"github.com/peterh/liner"
)

// ErrAborted is returned by a Prompter when the user interrupts input.
var ErrAborted = errors.New("input aborted")

// Prompter reads one line of user input after showing a prompt.
// It returns io.EOF when input is exhausted and ErrAborted on Ctrl-C.
type Prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// LinerPrompter reads from the terminal with line editing and history.
type LinerPrompter struct {
	state *liner.State
}

// NewLinerPrompter puts the terminal into line editing mode until Close.
func NewLinerPrompter() *LinerPrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &LinerPrompter{state: state}
}

func (p *LinerPrompter) Prompt(prompt string) (string, error) {
	line, err := p.state.Prompt(prompt)
	switch {
	case errors.Is(err, liner.ErrPromptAborted):
		return "", ErrAborted
	case err != nil:
		return "", err
	}
	if line != "" {
		p.state.AppendHistory(line)
	}
	return line, nil
}

func (p *LinerPrompter) Close() error {
	return p.state.Close()
}

// Script replays canned answers, for tests and non-terminal input.
type Script struct {
	mu      sync.Mutex
	answers []string
	prompts []string
}

// NewScript returns a prompter that answers with the given lines in order,
// then reports io.EOF.
func NewScript(answers ...string) *Script {
	return &Script{answers: answers}
}

func (s *Script) Prompt(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func (s *Script) Close() error { return nil }

// Prompts lists every prompt shown so far.
func (s *Script) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}
