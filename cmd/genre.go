package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ca-srg/goodreader/internal/formatter"
	"github.com/ca-srg/goodreader/internal/genrematch"
	"github.com/ca-srg/goodreader/internal/goodreads"
	"github.com/ca-srg/goodreader/internal/logger"
	"github.com/ca-srg/goodreader/internal/pager"
	"github.com/ca-srg/goodreader/internal/types"
)

var (
	genrePages int
	genreLimit int
)

var genreCmd = &cobra.Command{
	Use:   "genre <keyword>",
	Short: "Show a genre and the books shelved under it",
	Long: `
Show a genre's description and the books listed on its shelf.

When no genre has exactly that name, the genre index is searched for the
closest names. A clear winner is used directly; otherwise the candidates are
offered for selection (or listed in the error when not on a terminal).
`,
	Args: keywordArgs("genre"),
	RunE: runGenre,
}

func init() {
	genreCmd.Flags().IntVar(&genrePages, "pages", 0, "Maximum shelf pages to fetch (default GOODREADER_SHELF_PAGES)")
	genreCmd.Flags().IntVarP(&genreLimit, "limit", "n", 0, "Maximum number of books to show (0 = all fetched)")
}

func runGenre(cmd *cobra.Command, args []string) error {
	pages := current.cfg.ShelfPages
	if cmd.Flags().Changed("pages") {
		if genrePages < 1 {
			return usageError("--pages must be at least 1")
		}
		pages = genrePages
	}
	if genreLimit < 0 {
		return usageError("--limit must not be negative")
	}

	ctx := cmd.Context()
	keyword := strings.Join(args, " ")

	genre, err := current.client.Genre(ctx, keyword)
	if goodreads.IsEmptyResult(err) {
		genre, err = resolveGenre(cmd, keyword)
	}
	if goodreads.IsEmptyResult(err) {
		return emptyOutcome(cmd, err, "null")
	}
	if err != nil {
		return err
	}
	if genre == nil {
		return nil
	}

	var progress *pageProgress
	if current.interactive && !verbose && stderrIsTerminal() {
		progress = newPageProgress(cmd.ErrOrStderr(), pages, "Fetching books")
	}
	books, err := current.client.GenreBooks(ctx, genre.Slug, pages, genreLimit, progress.observer())
	progress.finish()
	if err != nil && !goodreads.IsEmptyResult(err) {
		return err
	}
	if err != nil {
		logger.For(ctx).WithError(err).Info("genre shelf is empty")
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Found %d books in genre '%s'.\n", len(books), genre.Name)

	detail := types.GenreDetail{Genre: *genre, Books: books}
	if outputJSON {
		return printJSON(detail)
	}
	fmt.Print(formatter.GenreDetail(detail, formatOptions()))
	return nil
}

// resolveGenre matches the keyword against the genre index. A nil genre with a
// nil error means the user quit the selection.
func resolveGenre(cmd *cobra.Command, keyword string) (*types.Genre, error) {
	ctx := cmd.Context()
	genres, err := current.client.Genres(ctx, current.cfg.GenrePages, nil)
	if err != nil {
		return nil, err
	}

	result := genrematch.Match(keyword, genres)
	logger.For(ctx).WithField("keyword", keyword).
		WithField("exact", result.Exact).
		WithField("auto", result.Auto).
		WithField("suggestions", len(result.Suggestions)).
		Debug("matched genre keyword")

	pick := result.Pick
	switch {
	case pick != nil && result.Auto:
		fmt.Fprintf(cmd.ErrOrStderr(), "Selected genre (auto): %s\n", pick.Name)
	case pick != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "Selected genre: %s\n", pick.Name)
	case len(result.Suggestions) == 0:
		return nil, &goodreads.LookupError{
			Kind:    types.ErrorKindEmptyResult,
			Message: fmt.Sprintf("no genre matches %q", keyword),
		}
	case !current.interactive:
		names := make([]string, len(result.Suggestions))
		for i, c := range result.Suggestions {
			names[i] = c.Genre.Name
		}
		return nil, usageError("no exact genre match for '%s'; closest: %s", keyword, strings.Join(names, ", "))
	default:
		lines := make([]string, len(result.Suggestions))
		for i, c := range result.Suggestions {
			lines[i] = c.Label()
		}
		index, ok, err := paginate(lines, pager.Options{
			PageSize: min(len(lines), genrematch.MaxSuggestions),
			Header:   fmt.Sprintf("No exact genre match for '%s'. Closest matches:", keyword),
		})
		if err != nil || !ok {
			return nil, err
		}
		picked := result.Suggestions[index].Genre
		pick = &picked
		fmt.Fprintf(cmd.ErrOrStderr(), "Selected genre: %s\n", pick.Name)
	}

	detail, err := current.client.Genre(ctx, pick.Slug)
	if goodreads.IsEmptyResult(err) {
		return pick, nil
	}
	if err != nil {
		return nil, err
	}
	if detail.Name == "" {
		detail.Name = pick.Name
	}
	return detail, nil
}
