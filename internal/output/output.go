// Package output writes extracted dates in the supported export formats.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/datextract/internal/model"
)

// Formats lists the accepted --format values.
var Formats = []string{"text", "json", "csv", "parquet"}

// Valid reports whether format is one of Formats.
func Valid(format string) bool {
	return slices.Contains(Formats, format)
}

// Write renders rows to w in the given format.
func Write(w io.Writer, format string, rows []model.DateRow) error {
	switch format {
	case "text":
		return writeText(w, rows)
	case "json":
		return writeJSON(w, rows)
	case "csv":
		return writeCSV(w, rows)
	case "parquet":
		return writeParquet(w, rows)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeText prints one ISO date per line.
func writeText(w io.Writer, rows []model.DateRow) error {
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, r.Date); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
	}
	return nil
}

func writeJSON(w io.Writer, rows []model.DateRow) error {
	if rows == nil {
		rows = []model.DateRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, rows []model.DateRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.CSVHeader()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(rows[i].CSVRecord()); err != nil {
			return fmt.Errorf("write csv row %d: %w", rows[i].Seq, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeParquet(w io.Writer, rows []model.DateRow) error {
	pw := parquet.NewGenericWriter[model.DateRow](w)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
