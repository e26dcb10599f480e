package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ca-srg/goodreader/internal/formatter"
	"github.com/ca-srg/goodreader/internal/goodreads"
)

var isbnCmd = &cobra.Command{
	Use:   "isbn <isbn-id>",
	Short: "Show the book with the given ISBN",
	Long: `
Show the details of one book. ISBN-10 and ISBN-13 are accepted, with or without
hyphens; the checksum is not verified.
`,
	Args: keywordArgs("ISBN"),
	RunE: runISBN,
}

func runISBN(cmd *cobra.Command, args []string) error {
	book, err := current.client.ISBN(cmd.Context(), strings.Join(args, ""))
	if goodreads.IsEmptyResult(err) {
		return emptyOutcome(cmd, err, "null")
	}
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(book)
	}
	fmt.Print(formatter.Book(book, formatOptions()))
	return nil
}
