package model

import "time"

// RunSummary captures metrics from a single store run.
type RunSummary struct {
	RunID         string
	Source        string
	SourceSHA256  string
	SourceID      int64
	Locales       []string
	AlreadyLoaded bool
	DatesFound    int64
	RowsStaged    int64
	DurationRead  time.Duration
	DurationCopy  time.Duration
	DurationFinal time.Duration
	DurationTotal time.Duration
}
