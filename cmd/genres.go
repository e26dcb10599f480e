package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ca-srg/goodreader/internal/formatter"
	"github.com/ca-srg/goodreader/internal/goodreads"
	"github.com/ca-srg/goodreader/internal/pager"
	"github.com/ca-srg/goodreader/internal/types"
)

var (
	genresPages  int
	genresFilter string
)

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the genres known to Goodreads",
	Long: `
Walk the genre index page by page and list every genre found. Use --filter to
keep only the genres whose name contains a text (case-insensitive).
`,
	Args: noArgs,
	RunE: runGenres,
}

func init() {
	genresCmd.Flags().IntVar(&genresPages, "pages", 0, "Maximum index pages to fetch (default GOODREADER_GENRE_PAGES)")
	genresCmd.Flags().StringVarP(&genresFilter, "filter", "f", "", "Only list genres whose name contains this text")
}

func runGenres(cmd *cobra.Command, _ []string) error {
	pages := current.cfg.GenrePages
	if cmd.Flags().Changed("pages") {
		if genresPages < 1 {
			return usageError("--pages must be at least 1")
		}
		pages = genresPages
	}

	var progress *pageProgress
	if current.interactive && !verbose && stderrIsTerminal() {
		progress = newPageProgress(cmd.ErrOrStderr(), pages, "Fetching genres")
	}
	genres, err := current.client.Genres(cmd.Context(), pages, progress.observer())
	progress.finish()
	if goodreads.IsEmptyResult(err) {
		return emptyOutcome(cmd, err, "[]")
	}
	if err != nil {
		return err
	}

	genres = filterGenres(genres, genresFilter)
	if outputJSON {
		return printJSON(genres)
	}
	if len(genres) == 0 {
		fmt.Println(formatter.NoResults)
		return nil
	}

	if !current.interactive || len(genres) <= current.cfg.PageSize {
		fmt.Print(formatter.Genres(genres))
		return nil
	}

	lines := make([]string, len(genres))
	for i, g := range genres {
		lines[i] = formatter.GenreLine(g)
	}
	_, _, err = paginate(lines, pager.Options{
		PageSize: current.cfg.PageSize,
		Header:   "Available Genres:",
		NoSelect: true,
	})
	return err
}

func filterGenres(genres []types.Genre, filter string) []types.Genre {
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return genres
	}
	kept := make([]types.Genre, 0, len(genres))
	for _, g := range genres {
		if strings.Contains(strings.ToLower(g.Name), needle) {
			kept = append(kept, g)
		}
	}
	return kept
}
