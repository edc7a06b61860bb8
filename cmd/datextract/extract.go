package main

import (
	"bufio"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gyeh/datextract/internal/exitcode"
	"github.com/gyeh/datextract/internal/input"
	"github.com/gyeh/datextract/internal/model"
	"github.com/gyeh/datextract/internal/output"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract dates from a document and write them out",
	RunE:  runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", input.Stdin, "Input text or PDF file (- for stdin)")
	f.StringVar(&cfg.OutputFormat, "format", "text", "Output format: text, json, csv or parquet")
	f.StringVar(&cfg.OutputPath, "out", "", "Output file (default stdout)")
	addRuleFlags(extractCmd)
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := setupLogger()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	ex, err := buildExtractor(log)
	if err != nil {
		log.Error().Err(err).Msg("failed to load rule sets")
		os.Exit(exitcode.RuleSetError)
	}

	doc, err := input.ReadFile(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to read input")
		os.Exit(exitcode.InputError)
	}

	rows := model.RowsFromMatches(uuid.New(), doc.Name, ex.ExtractMatches(doc.Text))
	log.Info().
		Str("source", doc.Name).
		Str("mime", doc.MIME).
		Int("dates", len(rows)).
		Msg("extraction complete")

	var w io.Writer = os.Stdout
	if cfg.OutputPath != "" {
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			log.Error().Err(err).Msg("failed to create output file")
			os.Exit(exitcode.OutputError)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	if err := output.Write(bw, cfg.OutputFormat, rows); err != nil {
		log.Error().Err(err).Msg("failed to write output")
		os.Exit(exitcode.OutputError)
	}
	if err := bw.Flush(); err != nil {
		log.Error().Err(err).Msg("failed to write output")
		os.Exit(exitcode.OutputError)
	}
	return nil
}
