package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinevault/cinesync/internal/core/domain"
	"github.com/cinevault/cinesync/internal/core/ports/driving"
)

var syncLoop bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise changed rows into the search indexes",
	Long: `Runs one synchronisation cycle: for each entity kind, extracts the rows
changed since the kind's watermark, enriches them with their relations
and upserts the resulting documents into Elasticsearch. A kind's
watermark only advances after its whole pass has loaded.

With --loop the engine keeps cycling at the configured poll interval
until interrupted.`,
	RunE: runSyncCmd,
}

func init() {
	syncCmd.Flags().BoolVar(&syncLoop, "loop", false,
		"keep syncing at the configured poll interval")
	rootCmd.AddCommand(syncCmd)
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := syncRunner
	poll := time.Duration(0)
	if runner == nil {
		eng, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer eng.close()

		for _, index := range eng.indexes {
			if err := eng.indexer.EnsureIndex(ctx, index); err != nil {
				return fmt.Errorf("preparing index: %w", err)
			}
		}
		runner = eng.runner
		poll = eng.poll
	}

	if !syncLoop {
		report, err := runner.RunCycle(ctx)
		if err != nil {
			return err
		}
		printReport(cmd, report)
		if failed := report.Failed(); len(failed) > 0 {
			return fmt.Errorf("%d of %d passes failed", len(failed), len(report.Outcomes))
		}
		return nil
	}

	return runLoop(ctx, cmd, runner, poll)
}

// runLoop cycles until the context is cancelled. Pass failures are
// reported and retried on the next cycle rather than stopping the loop.
func runLoop(ctx context.Context, cmd *cobra.Command, runner driving.SyncRunner, poll time.Duration) error {
	if poll <= 0 {
		poll = 30 * time.Second
	}

	for {
		report, err := runner.RunCycle(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		printReport(cmd, report)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(poll):
		}
	}
}

// printReport writes one line per pass.
func printReport(cmd *cobra.Command, report domain.CycleReport) {
	for _, outcome := range report.Outcomes {
		switch {
		case outcome.Err != nil:
			cmd.Printf("%-10s failed: %v\n", outcome.Kind, outcome.Err)
		case outcome.NoChanges():
			cmd.Printf("%-10s no changes\n", outcome.Kind)
		default:
			cmd.Printf("%-10s %d changed, %d loaded, watermark %s\n",
				outcome.Kind, outcome.Changed, outcome.Loaded,
				outcome.Watermark.Format(time.RFC3339))
		}
	}
}
