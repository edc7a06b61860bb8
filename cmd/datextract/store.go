package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyeh/datextract/internal/db"
	"github.com/gyeh/datextract/internal/exitcode"
	"github.com/gyeh/datextract/internal/ingest"
	"github.com/gyeh/datextract/pkg/extractor"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Extract dates from a document and store them in Postgres",
	RunE:  runStore,
}

func init() {
	f := storeCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "-", "Input text or PDF file (- for stdin), or a Parquet export with --from-parquet")
	f.BoolVar(&cfg.Force, "force", false, "Re-run even if the same content was stored with the same locales")
	f.BoolVar(&cfg.FromParquet, "from-parquet", false, "Import a Parquet export written by extract instead of extracting")
	addRuleFlags(storeCmd)
	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	log := setupLogger()
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	var ex *extractor.Extractor
	if !cfg.FromParquet {
		var err error
		if ex, err = buildExtractor(log); err != nil {
			log.Error().Err(err).Msg("failed to load rule sets")
			os.Exit(exitcode.RuleSetError)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DSN, log)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := ingest.Run(ctx, pool, log, &cfg, ex)
	if err != nil {
		var pe *ingest.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("store failed")
			pool.Close()
			switch pe.Phase {
			case ingest.PhasePreflight, ingest.PhaseExtract:
				os.Exit(exitcode.InputError)
			case ingest.PhaseStage:
				os.Exit(exitcode.CopyError)
			default:
				os.Exit(exitcode.FinalizeError)
			}
		}
		log.Error().Err(err).Msg("store failed")
		pool.Close()
		os.Exit(exitcode.FinalizeError)
	}

	if summary.AlreadyLoaded {
		fmt.Printf("Already stored as run %s (%d dates); use --force to re-run\n", summary.RunID, summary.DatesFound)
		return nil
	}
	fmt.Printf("Store complete: run %s, %d dates [%s] (%.1fs)\n",
		summary.RunID, summary.DatesFound, strings.Join(summary.Locales, ", "), summary.DurationTotal.Seconds())
	return nil
}
