package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verifyJSON   bool
	verifyRepair bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check stored case numbers",
	Long: `Re-extracts the case number from every stored case and reports cases
whose stored number is missing, differs from the text, or does not match
the document id.

With --repair, every reported case whose text carries a case number is
rewritten under that number: the stored number, the document id, the
chunk ids and the index entries all change. Cases whose text has no case
number are left alone.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "output the report as JSON")
	verifyCmd.Flags().BoolVar(&verifyRepair, "repair", false, "rewrite cases from the case number in their text")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	check := app.Verify.Verify
	if verifyRepair {
		check = app.Verify.Repair
	}
	report, err := check(cmd.Context())
	if err != nil {
		return err
	}

	if verifyJSON {
		if err := outputJSON(cmd, report); err != nil {
			return err
		}
	} else {
		st := newStyles(cmd.OutOrStdout())
		for _, issue := range report.Issues {
			cmd.Printf("  %s %s (%s): %s", st.Warning.Render("!"), issue.DocumentID, issue.SourceID, issue.Problem)
			if issue.Stored != "" || issue.Extracted != "" {
				cmd.Printf(" [stored %q, text %q]", issue.Stored, issue.Extracted)
			}
			if issue.Repaired() {
				cmd.Printf(" %s %s", st.Success.Render("repaired ->"), issue.RepairedID)
			}
			cmd.Println()
		}
		cmd.Printf("%s %d cases checked, %d issues", st.Title.Render("Verify:"), report.Checked, len(report.Issues))
		if verifyRepair {
			cmd.Printf(", %d repaired", len(report.Issues)-report.Outstanding())
		}
		cmd.Println()
	}

	if !report.OK() {
		return fmt.Errorf("%d of %d cases have case number issues", report.Outstanding(), report.Checked)
	}
	return nil
}
