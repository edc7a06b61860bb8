package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/datextract/internal/exitcode"
	"github.com/gyeh/datextract/internal/ruleset"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of rule definition files",
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	log := setupLogger()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ruleset.Schema()); err != nil {
		log.Error().Err(err).Msg("failed to write schema")
		os.Exit(exitcode.OutputError)
	}
	return nil
}
