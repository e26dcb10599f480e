package pager

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPrompter struct {
	mock.Mock
}

func (m *mockPrompter) Prompt(prompt string) (string, error) {
	args := m.Called(prompt)
	return args.String(0), args.Error(1)
}

func (m *mockPrompter) Close() error {
	return m.Called().Error(0)
}

func items(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item-%d", i+1)
	}
	return out
}

func TestPaginateEmptyList(t *testing.T) {
	var out bytes.Buffer
	script := NewScript()

	index, ok, err := New(&out, script).Paginate(nil, Options{PageSize: 5})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, -1, index)
	assert.Equal(t, "No results.\n", out.String())
	assert.Empty(t, script.Prompts())
}

func TestPaginateRejectsBadPageSize(t *testing.T) {
	_, _, err := New(io.Discard, NewScript()).Paginate(items(3), Options{})
	assert.Error(t, err)
}

func TestPaginateFirstPageAndSelect(t *testing.T) {
	var out bytes.Buffer
	script := NewScript("2")

	index, ok, err := New(&out, script).Paginate(items(3), Options{PageSize: 2, Header: "Closest matches:"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, index)

	assert.Equal(t, "Closest matches:\nPage 1/2 (1-2 of 3)\n1. item-1\n2. item-2\n\n", out.String())
	assert.Equal(t, []string{"Select 1..2 | n=next p=prev g=goto b=back q=quit: "}, script.Prompts())
}

func TestPaginateNavigation(t *testing.T) {
	var out bytes.Buffer
	script := NewScript("p", "n", "n", "n", "b", "g", "3", "7")

	index, ok, err := New(&out, script).Paginate(items(7), Options{PageSize: 3})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 6, index)

	text := out.String()
	assert.Contains(t, text, "Already at first page.")
	assert.Contains(t, text, "Already at last page.")
	assert.Contains(t, text, "Page 3/3 (7-7 of 7)\n7. item-7\n")
	assert.Equal(t, "Input page number 1..3 (q to quit): ", script.Prompts()[6])
}

func TestPaginateRejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	script := NewScript("zzz", "5", "g", "x", "g", "9", "g", "", "q")

	_, ok, err := New(&out, script).Paginate(items(4), Options{PageSize: 2})
	require.NoError(t, err)
	assert.False(t, ok)

	text := out.String()
	assert.Contains(t, text, "Invalid input. Enter an item number or n/p/g/b/q.")
	assert.Contains(t, text, "Out of range. Enter 1..2.")
	assert.Contains(t, text, `Invalid input: "x". Enter a number 1..2 (q to quit).`)
	assert.Contains(t, text, "Out of range. Enter a number 1..2 (q to quit).")
}

func TestPaginateNoSelect(t *testing.T) {
	var out bytes.Buffer
	script := NewScript("1", "n")

	index, ok, err := New(&out, script).Paginate(items(3), Options{PageSize: 2, NoSelect: true})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, -1, index)

	assert.Contains(t, out.String(), "Invalid input. Use n/p/g/b/q.")
	assert.Contains(t, out.String(), "Page 2/2 (3-3 of 3)")
	for _, prompt := range script.Prompts() {
		assert.Equal(t, "n=next p=prev g=goto b=back q=quit: ", prompt)
	}
}

func TestPaginateQuitFromGoto(t *testing.T) {
	_, ok, err := New(io.Discard, NewScript("g", "Q")).Paginate(items(3), Options{PageSize: 1, PagePrompt: "page? "})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPaginateInterrupted(t *testing.T) {
	prompter := &mockPrompter{}
	prompter.On("Prompt", "Select 1..1 | n=next p=prev g=goto b=back q=quit: ").Return("", ErrAborted).Once()

	var out bytes.Buffer
	_, ok, err := New(&out, prompter).Paginate(items(1), Options{PageSize: 1})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, strings.HasSuffix(out.String(), "\n\n"))

	prompter.AssertExpectations(t)
}

func TestPaginateInputFailure(t *testing.T) {
	prompter := &mockPrompter{}
	prompter.On("Prompt", mock.Anything).Return("", errors.New("bad terminal")).Once()

	_, ok, err := New(io.Discard, prompter).Paginate(items(2), Options{PageSize: 5})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "bad terminal")

	prompter.AssertExpectations(t)
}

func TestPaginateTrimsAndLowercases(t *testing.T) {
	index, ok, err := New(io.Discard, NewScript("  N ", " 2\t")).Paginate(items(2), Options{PageSize: 1})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, index)
}
