package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/datextract/pkg/extractor"
)

func TestRowsFromMatches(t *testing.T) {
	runID := uuid.MustParse("6f1c1a8e-4a59-4f0b-9d8e-2f4f3c1b2a10")
	ms := []extractor.Match{
		{Date: extractor.Date{Year: 2025, Month: time.April, Day: 7}, Locale: "en-US", Layout: "M d yyyy", Offset: 8, Length: 10, Text: "04 07 2025"},
		{Date: extractor.Date{Year: 2025, Month: time.January, Day: 4}, Locale: "nb-NO", Layout: "d MMMM yyyy", Offset: 19, Length: 13, Text: "4 januar 2025"},
	}

	rows := RowsFromMatches(runID, "invoice.txt", ms)
	require.Len(t, rows, 2)

	assert.Equal(t, DateRow{
		RunID: runID, Source: "invoice.txt", Seq: 1,
		Date: "2025-04-07", Year: 2025, Month: 4, Day: 7,
		Locale: "en-US", Layout: "M d yyyy", Matched: "04 07 2025", Offset: 8,
	}, rows[0])
	assert.Equal(t, int32(2), rows[1].Seq)
	assert.Equal(t, "2025-01-04", rows[1].Date)

	assert.Empty(t, RowsFromMatches(runID, "-", nil))
}

func TestDateRow_CopyValues(t *testing.T) {
	r := DateRow{RunID: uuid.New(), Seq: 3, Source: "-", Date: "2024-02-29", Year: 2024, Month: 2, Day: 29, Locale: "en-US", Layout: "M d yyyy", Matched: "02 29 2024", Offset: 4}

	vals := r.CopyValues()
	require.Len(t, vals, len(DateColumns()))
	assert.Equal(t, r.RunID, vals[0])
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), vals[3])
	assert.Equal(t, int16(29), vals[6])
}

func TestDateRow_CSVRecord(t *testing.T) {
	r := DateRow{RunID: uuid.Nil, Seq: 1, Source: "a.txt", Date: "2019-11-01", Year: 2019, Month: 11, Day: 1, Locale: "en-US", Layout: "MMMM d yyyy", Matched: "november 1 2019", Offset: 16}
	rec := r.CSVRecord()
	require.Len(t, rec, len(CSVHeader()))
	assert.Equal(t, []string{
		"00000000-0000-0000-0000-000000000000", "a.txt", "1", "2019-11-01",
		"2019", "11", "1", "en-US", "MMMM d yyyy", "november 1 2019", "16",
	}, rec)
}
