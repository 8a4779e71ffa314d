package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// snippetRunes bounds the passage text shown per result.
const snippetRunes = 240

var (
	searchTopK    int
	searchFilters []string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve passages for a question",
	Long: `Embeds the question and returns the closest case passages.

Neighbouring passages of the same case are collapsed so each result adds
new text. Filters match metadata exactly, for example:

  caselex search "limitation period for appeals" --filter court="High Court of Kenya"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of passages (default from config)")
	searchCmd.Flags().StringArrayVarP(&searchFilters, "filter", "f", nil, "metadata filter key=value (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	filters, err := parseFilters(searchFilters)
	if err != nil {
		return err
	}

	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Retrieval.Retrieve(cmd.Context(), domain.Query{
		Text:    args[0],
		TopK:    searchTopK,
		Filters: filters,
	})
	if err != nil {
		return fmt.Errorf("search failed (%s): %w", domain.KindOf(err), err)
	}

	if searchJSON {
		return outputJSON(cmd, result)
	}
	outputPassages(cmd, result)
	return nil
}

// parseFilters turns key=value pairs into a filter map.
func parseFilters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: filter %q is not key=value", domain.ErrInvalidInput, p)
		}
		filters[k] = v
	}
	return filters, nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputPassages(cmd *cobra.Command, result *domain.RetrievalResult) {
	st := newStyles(cmd.OutOrStdout())
	if result.Len() == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println(st.Title.Render("Results:"))
	cmd.Println()
	for i, p := range result.Passages {
		// [N] document #ordinal (score)
		cmd.Printf("  [%d] %s #%d %s\n", i+1, p.DocumentID, p.Ordinal, st.Muted.Render(fmt.Sprintf("(%.3f)", p.Score)))
		if cn := p.Metadata[domain.MetaCaseNumber]; cn != "" {
			cmd.Printf("      %s %s\n", st.Label.Render("Case:"), cn)
		}
		if court := p.Metadata[domain.MetaCourt]; court != "" {
			cmd.Printf("      %s %s\n", st.Label.Render("Court:"), court)
		}
		cmd.Printf("      %s\n", snippet(p.Text))
		cmd.Println()
	}
	cmd.Println(st.Muted.Render("model " + result.ModelVersion))
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= snippetRunes {
		return text
	}
	return string(r[:snippetRunes]) + "..."
}
