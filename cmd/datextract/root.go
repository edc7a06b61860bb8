package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/datextract/internal/config"
	"github.com/gyeh/datextract/internal/exitcode"
	"github.com/gyeh/datextract/internal/logging"
	"github.com/gyeh/datextract/pkg/extractor"
)

const dsnEnv = "DATEXTRACT_DB_URL"

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "datextract",
	Short: "Find calendar dates in free-form text",
	Long: "Extracts calendar dates from text and PDF documents using per-locale rule sets, " +
		"writes them as text, JSON, CSV or Parquet, and optionally stores them in Postgres via COPY.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv(dsnEnv), "Postgres connection string (or set "+dsnEnv+")")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: trace, debug, info, warn or error")
	pf.StringVar(&cfg.ConfigPath, "config", "", "Path to a YAML config file")
}

// loadConfig reads .env (if present) and the YAML config file. Flags given
// on the command line win over the file.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if cfg.DSN == "" {
		cfg.DSN = os.Getenv(dsnEnv)
	}
	if cfg.ConfigPath != "" {
		if err := cfg.LoadFromFile(cfg.ConfigPath, cmd.Flags().Changed); err != nil {
			return err
		}
	}
	return cfg.ExpandRuleFiles()
}

// setupLogger validates the logging flags and returns the configured logger,
// exiting with a usage error when they are invalid.
func setupLogger() zerolog.Logger {
	if err := cfg.ValidateLogging(); err != nil {
		log := logging.Setup("text", zerolog.InfoLevel)
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	lvl, _ := cfg.Level()
	return logging.Setup(cfg.LogFormat, lvl)
}

// buildExtractor assembles rule sets in precedence order: built-in locales,
// then rule files, then the rules directory.
func buildExtractor(log zerolog.Logger) (*extractor.Extractor, error) {
	var srcs []extractor.Source
	if len(cfg.Locales) > 0 {
		srcs = append(srcs, extractor.Locales(cfg.Locales...))
	}
	if len(cfg.RuleFiles) > 0 {
		srcs = append(srcs, extractor.Files(cfg.RuleFiles...))
	}
	if cfg.RulesDir != "" {
		srcs = append(srcs, extractor.Dir(os.DirFS(cfg.RulesDir)))
	}
	return extractor.NewFromSources(srcs, extractor.WithLogger(log))
}

// addRuleFlags registers the rule selection flags shared by extract, plan and store.
func addRuleFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&cfg.Locales, "locale", nil, "Built-in locale rule sets, in precedence order (repeatable)")
	f.StringSliceVar(&cfg.RuleFiles, "rules", nil, "Rule definition files or globs (JSON or YAML)")
	f.StringVar(&cfg.RulesDir, "rules-dir", "", "Directory of rule definition files")
}
