package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/gyeh/datextract/internal/exitcode"
	"github.com/gyeh/datextract/internal/input"
	"github.com/gyeh/datextract/pkg/extractor"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run extraction stats (no output, no writes)",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&cfg.FilePath, "file", input.Stdin, "Input text or PDF file (- for stdin)")
	addRuleFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := setupLogger()

	if err := cfg.ValidateRules(); err != nil {
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

	ms := ex.ExtractMatches(doc.Text)
	locales := ex.Locales()
	counts := countByRuleSet(ms, len(locales))

	fmt.Println("=== datextract plan ===")
	fmt.Printf("Source:     %s\n", doc.Name)
	fmt.Printf("SHA-256:    %s\n", doc.SHA256)
	fmt.Printf("Size:       %d bytes\n", doc.Size)
	fmt.Printf("Type:       %s\n", doc.MIME)
	fmt.Printf("Text:       %d bytes\n", len(doc.Text))
	fmt.Printf("Dates:      %d\n", len(ms))
	fmt.Println()
	fmt.Println("Dates by rule set (precedence order):")
	for i, loc := range locales {
		fmt.Printf("  %2d %-10s %d\n", i+1, loc, counts[i])
	}
	if len(ms) > 0 {
		dates := make([]string, len(ms))
		for i, m := range ms {
			dates[i] = m.Date.String()
		}
		slices.Sort(dates)
		fmt.Printf("\nRange: %s .. %s\n", dates[0], dates[len(dates)-1])
	}
	return nil
}

// countByRuleSet tallies matches per rule set; locales may repeat, indexes do not.
func countByRuleSet(ms []extractor.Match, sets int) []int {
	counts := make([]int, sets)
	for _, m := range ms {
		counts[m.RuleSet]++
	}
	return counts
}
