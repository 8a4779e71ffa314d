package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

var (
	rebuildProvider string
	rebuildModel    string
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-embed every stored passage",
	Long: `Re-embeds every stored passage with the configured embedding model and
swaps the index over in one step. Searches keep using the old index until
the new one is complete; if re-embedding fails the old index stays.

Use this after changing the embedding model. --provider and --model
override the configuration for this run; update the config file afterwards
so that ingest and search use the same model.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func init() {
	rebuildCmd.Flags().StringVar(&rebuildProvider, "provider", "", "embedding provider override")
	rebuildCmd.Flags().StringVar(&rebuildModel, "model", "", "embedding model override")
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd, func(s *domain.Settings) {
		if rebuildProvider != "" {
			s.Embedding.Provider = domain.AIProvider(rebuildProvider)
		}
		if rebuildModel != "" {
			s.Embedding.Model = rebuildModel
		}
	})
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Reindex.Rebuild(cmd.Context())
	if err != nil {
		return err
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Printf("%s %d entries re-embedded in %s\n", st.Title.Render("Rebuild:"),
		report.Entries, report.Duration.Round(time.Millisecond))
	cmd.Printf("  %s %s -> %s\n", st.Label.Render("Model:"), report.PreviousVersion, report.ModelVersion)
	return nil
}
