package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchQuick bool
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search books by title or keyword",
	Long: `
Search Goodreads books matching a keyword. Multiple words are joined into one query.

With --quick the lighter JSON autocomplete endpoint is used; it returns fewer
results but answers faster.
`,
	Args: keywordArgs("keyword"),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchQuick, "quick", false, "Use the autocomplete endpoint instead of the full search page")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of books to show (0 = all on the first page)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchLimit < 0 {
		return usageError("--limit must not be negative")
	}
	books, err := current.client.Search(cmd.Context(), strings.Join(args, " "), searchQuick, searchLimit)
	return showBooks(cmd, books, err)
}
