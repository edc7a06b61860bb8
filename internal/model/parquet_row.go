package model

import (
	"github.com/google/uuid"

	"github.com/gyeh/datextract/pkg/extractor"
)

// DateRow is one extracted date in export form. The same struct backs the
// JSON, CSV and Parquet writers and the Postgres COPY source.
type DateRow struct {
	RunID  uuid.UUID `parquet:"run_id,uuid" json:"run_id"`
	Source string    `parquet:"source" json:"source"`
	// Seq is the position of the date in the extraction result.
	Seq   int32  `parquet:"seq" json:"seq"`
	Date  string `parquet:"date" json:"date"`
	Year  int32  `parquet:"year" json:"year"`
	Month int32  `parquet:"month" json:"month"`
	Day   int32  `parquet:"day" json:"day"`
	// Locale is the rule set that recognized the date.
	Locale  string `parquet:"locale" json:"locale"`
	Layout  string `parquet:"layout" json:"layout"`
	Matched string `parquet:"matched" json:"matched"`
	// Offset is the byte offset of Matched in the canonical text.
	Offset int32 `parquet:"offset" json:"offset"`
}

// RowsFromMatches converts an extraction result to rows, numbering them in
// result order starting at 1.
func RowsFromMatches(runID uuid.UUID, source string, ms []extractor.Match) []DateRow {
	rows := make([]DateRow, len(ms))
	for i, m := range ms {
		rows[i] = DateRow{
			RunID:   runID,
			Source:  source,
			Seq:     int32(i + 1),
			Date:    m.Date.String(),
			Year:    int32(m.Date.Year),
			Month:   int32(m.Date.Month),
			Day:     int32(m.Date.Day),
			Locale:  m.Locale,
			Layout:  m.Layout,
			Matched: m.Text,
			Offset:  int32(m.Offset),
		}
	}
	return rows
}
