package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var authorLimit int

var authorCmd = &cobra.Command{
	Use:   "author <keyword>",
	Short: "List books by an author",
	Args:  keywordArgs("author name"),
	RunE:  runAuthor,
}

func init() {
	authorCmd.Flags().IntVarP(&authorLimit, "limit", "n", 0, "Maximum number of books to show (0 = all on the first page)")
}

func runAuthor(cmd *cobra.Command, args []string) error {
	if authorLimit < 0 {
		return usageError("--limit must not be negative")
	}
	books, err := current.client.Author(cmd.Context(), strings.Join(args, " "), authorLimit)
	return showBooks(cmd, books, err)
}
