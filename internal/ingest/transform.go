package ingest

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/datextract/internal/model"
	"github.com/gyeh/datextract/pkg/extractor"
)

// TransformResult holds the rows produced by the extraction phase.
type TransformResult struct {
	Rows     []model.DateRow
	Duration time.Duration
}

// Transform runs the extractor over the preflighted document.
func Transform(log zerolog.Logger, ex *extractor.Extractor, pf *PreflightResult) *TransformResult {
	start := time.Now()
	ms := ex.ExtractMatches(pf.Doc.Text)
	rows := model.RowsFromMatches(pf.RunID, pf.Source, ms)

	byLocale := zerolog.Dict()
	counts := make(map[string]int)
	for _, m := range ms {
		counts[m.Locale]++
	}
	for loc, n := range counts {
		byLocale.Int(loc, n)
	}

	dur := time.Since(start)
	log.Info().
		Int("dates", len(rows)).
		Dict("by_locale", byLocale).
		Dur("duration", dur).
		Msg("extraction complete")

	return &TransformResult{Rows: rows, Duration: dur}
}
