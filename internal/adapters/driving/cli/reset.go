package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cinevault/cinesync/internal/core/domain"
)

var resetAll bool

var resetCmd = &cobra.Command{
	Use:   "reset [kind...]",
	Short: "Clear stored watermarks so kinds re-sync from the beginning",
	Long: `Removes the stored watermark for the given entity kinds (film_work,
genre, person), or for every kind with --all. The next sync pass for a
cleared kind extracts from the beginning of the table; upserts make the
replay safe.`,
	RunE: runResetCmd,
}

func init() {
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "reset every entity kind")
	rootCmd.AddCommand(resetCmd)
}

func runResetCmd(cmd *cobra.Command, args []string) error {
	kinds, err := resolveKinds(args, resetAll)
	if err != nil {
		return err
	}

	states, cleanup, err := resolveStateStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	for _, kind := range kinds {
		if err := states.Delete(ctx, kind); err != nil {
			return fmt.Errorf("resetting %s: %w", kind, err)
		}
		cmd.Printf("%-10s watermark cleared\n", kind)
	}
	return nil
}

// resolveKinds validates the requested kind names, preserving the
// canonical sync order with --all.
func resolveKinds(args []string, all bool) ([]domain.EntityKind, error) {
	if all {
		if len(args) > 0 {
			return nil, errors.New("--all cannot be combined with kind arguments")
		}
		return domain.Kinds(), nil
	}
	if len(args) == 0 {
		return nil, errors.New("specify entity kinds to reset, or --all")
	}

	known := domain.Kinds()
	kinds := make([]domain.EntityKind, 0, len(args))
	for _, arg := range args {
		kind := domain.EntityKind(arg)
		valid := false
		for _, k := range known {
			if kind == k {
				valid = true
				break
			}
		}
		if !valid {
			names := make([]string, len(known))
			for i, k := range known {
				names[i] = string(k)
			}
			return nil, fmt.Errorf("unknown entity kind %q (one of: %s)",
				arg, strings.Join(names, ", "))
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
