package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/datextract/internal/exitcode"
	"github.com/gyeh/datextract/internal/ruleset"
)

var localesCmd = &cobra.Command{
	Use:   "locales",
	Short: "List the built-in locale rule sets",
	RunE:  runLocales,
}

func init() {
	rootCmd.AddCommand(localesCmd)
}

func runLocales(cmd *cobra.Command, args []string) error {
	log := setupLogger()

	for _, name := range ruleset.BuiltinNames() {
		rs, err := ruleset.Builtin(name)
		if err != nil {
			log.Error().Err(err).Str("locale", name).Msg("built-in rule set failed to compile")
			os.Exit(exitcode.RuleSetError)
		}
		fmt.Printf("%-8s %2d patterns\n", name, len(rs.Patterns))
	}
	return nil
}
