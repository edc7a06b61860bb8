package model

import (
	"strconv"
	"time"
)

// DateColumns returns the ordered column names for COPY into datex.extracted_dates.
func DateColumns() []string {
	return []string{
		"run_id",
		"seq",
		"source",
		"date",
		"year",
		"month",
		"day",
		"locale",
		"layout",
		"matched",
		"byte_offset",
	}
}

// CopyValues returns the row's values in DateColumns order.
func (r *DateRow) CopyValues() []any {
	return []any{
		r.RunID,
		r.Seq,
		r.Source,
		r.CalendarDate(),
		int16(r.Year),
		int16(r.Month),
		int16(r.Day),
		r.Locale,
		r.Layout,
		r.Matched,
		r.Offset,
	}
}

// CalendarDate returns the date as midnight UTC.
func (r *DateRow) CalendarDate() time.Time {
	return time.Date(int(r.Year), time.Month(r.Month), int(r.Day), 0, 0, 0, 0, time.UTC)
}

// CSVHeader is the header record written before CSV rows.
func CSVHeader() []string {
	return []string{"run_id", "source", "seq", "date", "year", "month", "day", "locale", "layout", "matched", "offset"}
}

// CSVRecord returns the row in CSVHeader order.
func (r *DateRow) CSVRecord() []string {
	return []string{
		r.RunID.String(),
		r.Source,
		strconv.Itoa(int(r.Seq)),
		r.Date,
		strconv.Itoa(int(r.Year)),
		strconv.Itoa(int(r.Month)),
		strconv.Itoa(int(r.Day)),
		r.Locale,
		r.Layout,
		r.Matched,
		strconv.Itoa(int(r.Offset)),
	}
}
