package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/datextract/internal/output"
	"github.com/gyeh/datextract/internal/ruleset"
)

// Config holds all runtime configuration for a datextract run.
type Config struct {
	DSN          string
	ConfigPath   string
	FilePath     string
	OutputPath   string
	LogFormat    string // "text" or "json"
	LogLevel     string
	Force        bool
	FromParquet  bool
	Locales      []string
	RuleFiles    []string
	RulesDir     string
	OutputFormat string
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Locales      []string `yaml:"locales"`
	RuleFiles    []string `yaml:"rule_files"`
	RulesDir     string   `yaml:"rules_dir"`
	OutputFormat string   `yaml:"output_format"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// A value is taken from the file only when isSet reports that the matching
// flag was not given on the command line; isSet may be nil.
func (c *Config) LoadFromFile(path string, isSet func(flag string) bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var yc yamlConfig
	if err := dec.Decode(&yc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file: %w", err)
	}

	if isSet == nil {
		isSet = func(string) bool { return false }
	}
	if len(yc.Locales) > 0 && !isSet("locale") {
		c.Locales = yc.Locales
	}
	if len(yc.RuleFiles) > 0 && !isSet("rules") {
		c.RuleFiles = yc.RuleFiles
	}
	if yc.RulesDir != "" && !isSet("rules-dir") {
		c.RulesDir = yc.RulesDir
	}
	if yc.OutputFormat != "" && !isSet("format") {
		c.OutputFormat = yc.OutputFormat
	}
	return nil
}

// ExpandRuleFiles replaces glob patterns in RuleFiles ("rules/**/*.json")
// with the sorted files they match. Plain paths are kept as given.
func (c *Config) ExpandRuleFiles() error {
	var out []string
	for _, p := range c.RuleFiles {
		if !strings.ContainsAny(p, "*?[{") {
			out = append(out, p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("rule file pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return fmt.Errorf("rule file pattern %q matched nothing", p)
		}
		slices.Sort(matches)
		out = append(out, matches...)
	}
	c.RuleFiles = out
	return nil
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid --log-level %q", c.LogLevel)
	}
	return lvl, nil
}

// ValidateLogging checks the logging flags.
func (c *Config) ValidateLogging() error {
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid --log-format %q: want text or json", c.LogFormat)
	}
	_, err := c.Level()
	return err
}

// ValidateRules checks that at least one rule source is configured and that
// every requested locale has a built-in rule set.
func (c *Config) ValidateRules() error {
	if len(c.Locales) == 0 && len(c.RuleFiles) == 0 && c.RulesDir == "" {
		return fmt.Errorf("at least one of --locale, --rules or --rules-dir is required")
	}
	for _, id := range c.Locales {
		if !ruleset.HasBuiltin(id) {
			return fmt.Errorf("unknown locale %q (known: %s)", id, strings.Join(ruleset.BuiltinNames(), ", "))
		}
	}
	if c.RulesDir != "" {
		st, err := os.Stat(c.RulesDir)
		if err != nil {
			return fmt.Errorf("rules dir not accessible: %w", err)
		}
		if !st.IsDir() {
			return fmt.Errorf("rules dir %s is not a directory", c.RulesDir)
		}
	}
	return nil
}

// Validate checks an extract run: logging, rules and output format.
func (c *Config) Validate() error {
	if err := c.ValidateLogging(); err != nil {
		return err
	}
	if err := c.ValidateRules(); err != nil {
		return err
	}
	if !output.Valid(c.OutputFormat) {
		return fmt.Errorf("invalid --format %q: want one of %s", c.OutputFormat, strings.Join(output.Formats, ", "))
	}
	return nil
}

// ValidateWithDSN checks a store run. Rules are not needed when importing a
// Parquet export, but the input file is.
func (c *Config) ValidateWithDSN() error {
	if err := c.ValidateLogging(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATEXTRACT_DB_URL is required")
	}
	if c.FromParquet {
		if c.FilePath == "" || c.FilePath == "-" {
			return fmt.Errorf("--file is required with --from-parquet")
		}
	} else if err := c.ValidateRules(); err != nil {
		return err
	}
	if c.FilePath != "" && c.FilePath != "-" {
		if _, err := os.Stat(c.FilePath); err != nil {
			return fmt.Errorf("file not accessible: %w", err)
		}
	}
	return nil
}
