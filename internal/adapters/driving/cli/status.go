package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinevault/cinesync/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the per-kind sync watermarks",
	Long: `Prints the stored watermark for each entity kind. A kind with no
watermark has never completed a pass and will sync from the beginning.`,
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	states, cleanup, err := resolveStateStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	for _, kind := range domain.Kinds() {
		state, err := states.Get(ctx, kind)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			cmd.Printf("%-10s never synchronised\n", kind)
		case err != nil:
			return err
		case state.Watermark == nil:
			cmd.Printf("%-10s never synchronised\n", kind)
		default:
			cmd.Printf("%-10s watermark %s, last sync %s\n", kind,
				state.Watermark.Format(time.RFC3339),
				state.LastSync.Format(time.RFC3339))
		}
	}
	return nil
}
