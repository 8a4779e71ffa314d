package cli

import (
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	stats := app.Catalog.Stats(cmd.Context())
	if statsJSON {
		return outputJSON(cmd, stats)
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.Title.Render("Index"))
	cmd.Printf("  %s %s\n", st.Label.Render("Model version:"), stats.ModelVersion)
	cmd.Printf("  %s %d\n", st.Label.Render("Dimensions:   "), stats.Dimensions)
	cmd.Printf("  %s %d\n", st.Label.Render("Entries:      "), stats.Entries)
	cmd.Printf("  %s %d\n", st.Label.Render("Documents:    "), stats.Documents)
	return nil
}
