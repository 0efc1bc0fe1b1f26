// Package cli implements the cinesync command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/cinevault/cinesync/internal/core/ports/driven"
	"github.com/cinevault/cinesync/internal/core/ports/driving"
	"github.com/cinevault/cinesync/internal/logger"
)

var (
	cfgPath string
	verbose bool

	// version is set by main before Execute.
	version = "dev"
)

// Injected services. They are nil in normal operation and built from
// configuration on first use; tests substitute fakes.
var (
	syncRunner driving.SyncRunner
	stateStore driven.SyncStateStore
)

var rootCmd = &cobra.Command{
	Use:   "cinesync",
	Short: "Incremental PostgreSQL to Elasticsearch sync for the movie catalogue",
	Long: `cinesync propagates changes from the relational movie catalogue into
the denormalised search indexes. Each entity kind (film works, genres,
persons) carries its own watermark; a sync pass extracts the rows
changed since that watermark, enriches them with their relations and
upserts the resulting documents.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"path to the TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}

// SetVersion records the build version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
