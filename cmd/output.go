package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ca-srg/goodreader/internal/formatter"
	"github.com/ca-srg/goodreader/internal/goodreads"
	"github.com/ca-srg/goodreader/internal/logger"
	"github.com/ca-srg/goodreader/internal/pager"
	"github.com/ca-srg/goodreader/internal/types"
)

func formatOptions() formatter.Options {
	return formatter.Options{DescriptionWidth: current.cfg.DescriptionWidth}
}

// emptyOutcome reports an EmptyResult as "No results." and succeeds.
func emptyOutcome(cmd *cobra.Command, err error, emptyJSON string) error {
	logger.For(cmd.Context()).WithError(err).Info("lookup returned nothing")
	if outputJSON {
		fmt.Println(emptyJSON)
		return nil
	}
	fmt.Println(formatter.NoResults)
	return nil
}

func printJSON(v interface{}) error {
	out, err := formatter.JSON(v)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// showBooks prints a book listing. On a terminal long listings are paged and
// picking an entry prints its details.
func showBooks(cmd *cobra.Command, books []types.Book, err error) error {
	if goodreads.IsEmptyResult(err) {
		return emptyOutcome(cmd, err, "[]")
	}
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(books)
	}

	opts := formatOptions()
	if !current.interactive || len(books) <= current.cfg.PageSize {
		fmt.Print(formatter.Books(books, opts))
		return nil
	}

	lines := make([]string, len(books))
	for i, book := range books {
		lines[i] = formatter.BookLine(book)
	}
	index, ok, err := paginate(lines, pager.Options{PageSize: current.cfg.PageSize})
	if err != nil || !ok {
		return err
	}
	fmt.Print(formatter.Book(&books[index], opts))
	return nil
}

// paginate runs one pager session on the terminal.
func paginate(lines []string, opts pager.Options) (int, bool, error) {
	prompter := newPrompter()
	defer func() {
		_ = prompter.Close()
	}()
	return pager.New(os.Stdout, prompter).Paginate(lines, opts)
}
