package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caselex/internal/connectors/filesystem"
	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
	"github.com/custodia-labs/caselex/internal/core/ports/driving"
	"github.com/custodia-labs/caselex/internal/logger"
)

var (
	ingestForce bool
	ingestWatch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Index case files",
	Long: `Reads case files from the given files and directories, normalises them,
splits them into passages and indexes their embeddings.

Directories are walked recursively for the configured extensions. A file
holding several cases separated by a line of underscores is indexed as one
document per case. Cases already in the index are skipped unless --force
is given.

With --watch the command keeps running after the initial pass: created and
changed files are re-indexed and cases whose file is removed are dropped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "re-index cases that are already indexed")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the paths for changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	source := filesystem.New(args, app.Settings.Ingest.Extensions)
	defer source.Close()

	raws, err := source.Collect(ctx)
	if err != nil {
		return err
	}
	report, err := app.Ingest.IngestAll(ctx, raws, driving.IngestOptions{Force: ingestForce})
	if report != nil {
		outputIngestReport(cmd, report)
	}
	if err != nil {
		return err
	}

	if ingestWatch {
		return watchSource(ctx, cmd, app.Ingest, source, source.Roots())
	}
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d documents failed: %w", n, len(report.Outcomes), report.Err())
	}
	return nil
}

// watchSource re-indexes changed files until ctx is cancelled.
func watchSource(
	ctx context.Context, cmd *cobra.Command, ingest driving.IngestService, source driven.CaseSource, roots []string,
) error {
	changes, err := source.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", strings.Join(roots, ", "))

	for change := range changes {
		logger.Debug("%s %s", change.Type, change.Path)
		if change.Type == domain.ChangeDeleted {
			removed, err := ingest.Remove(ctx, change.Path)
			if err != nil {
				logger.Error("remove %s: %v", change.Path, err)
				continue
			}
			if len(removed) > 0 {
				cmd.Printf("Removed %s (%s)\n", change.Path, strings.Join(removed, ", "))
			}
			continue
		}

		raws, err := source.Read(ctx, change.Path)
		if err != nil {
			logger.Warn("%v", err)
			continue
		}
		// A changed file replaces whatever was indexed from it.
		report, err := ingest.IngestAll(ctx, raws, driving.IngestOptions{Force: true})
		if errors.Is(err, context.Canceled) {
			break
		}
		if err != nil {
			return err
		}
		outputIngestReport(cmd, report)
	}
	return nil
}

func outputIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	st := newStyles(cmd.OutOrStdout())
	for _, o := range report.Outcomes {
		switch o.Status {
		case domain.OutcomeSucceeded:
			cmd.Printf("  %s %s -> %s (%d chunks)\n", st.Success.Render("indexed"), o.SourceID, o.DocumentID, o.Chunks)
		case domain.OutcomeSkipped:
			cmd.Printf("  %s %s: %s\n", st.Warning.Render("skipped"), o.SourceID, o.Reason)
		case domain.OutcomeFailed:
			cmd.Printf("  %s  %s: %s: %v\n", st.Error.Render("failed"), o.SourceID, o.Reason, o.Err)
		}
	}
	cmd.Printf("%s %d indexed, %d skipped, %d failed, %d chunks in %s\n",
		st.Title.Render("Ingest:"),
		report.Succeeded(), report.Skipped(), report.Failed(), report.Chunks(),
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
}
