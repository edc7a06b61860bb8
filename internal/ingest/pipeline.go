// Package ingest stores extraction results in Postgres: preflight → extract
// → stage → dimensions → finalize, with cleanup of partial rows on failure.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/datextract/internal/config"
	"github.com/gyeh/datextract/internal/db"
	"github.com/gyeh/datextract/internal/model"
	"github.com/gyeh/datextract/internal/parquetread"
	"github.com/gyeh/datextract/pkg/extractor"
)

// Phase names reported in PipelineError.
const (
	PhasePreflight  = "preflight"
	PhaseExtract    = "extract"
	PhaseStage      = "stage"
	PhaseDimensions = "dimensions"
	PhaseFinalize   = "finalize"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full store pipeline. ex may be nil when cfg.FromParquet
// is set, since an export already carries its dates.
func Run(ctx context.Context, conn db.DB, log zerolog.Logger, cfg *config.Config, ex *extractor.Extractor) (*model.RunSummary, error) {
	totalStart := time.Now()

	var locales []string
	if ex != nil {
		locales = ex.Locales()
	}

	// Phase 1: Preflight
	log.Info().Str("file", cfg.FilePath).Msg("starting preflight")
	pf, err := Preflight(ctx, conn, log, cfg, locales)
	if err != nil {
		return nil, &PipelineError{Phase: PhasePreflight, Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Int64("source_id", pf.SourceID).
			Str("sha256", pf.SHA256).
			Str("run_id", pf.PriorRunID.String()).
			Msg("source already stored with these locales, skipping (use --force to re-run)")
		return &model.RunSummary{
			RunID:         pf.PriorRunID.String(),
			Source:        pf.Source,
			SourceSHA256:  pf.SHA256,
			SourceID:      pf.SourceID,
			Locales:       locales,
			AlreadyLoaded: true,
			DatesFound:    pf.PriorDates,
			DurationTotal: time.Since(totalStart),
		}, nil
	}
	log = log.With().Str("run_id", pf.RunID.String()).Logger()

	fail := func(phase string, err error) (*model.RunSummary, error) {
		Cleanup(ctx, conn, log, pf.RunID)
		return nil, &PipelineError{Phase: phase, Err: err}
	}

	// Phase 2: Extract (or open the export being imported)
	var (
		src     RowReader
		readDur time.Duration
	)
	if cfg.FromParquet {
		reader, err := parquetread.Open(pf.FilePath)
		if err != nil {
			return fail(PhaseExtract, err)
		}
		defer reader.Close()
		src = reader
	} else {
		log.Info().Msg("starting extraction")
		tr := Transform(log, ex, pf)
		readDur = tr.Duration
		src = NewSliceReader(tr.Rows)
	}

	// Phase 3: Stage
	if err := UpdateStatus(ctx, conn, pf.RunID, "staging"); err != nil {
		return fail(PhaseStage, err)
	}
	stageResult, err := Stage(ctx, conn, log, pf, src)
	if err != nil {
		return fail(PhaseStage, err)
	}

	// Phase 4: Dimensions
	if err := UpsertDimensions(ctx, conn, log, pf.RunID); err != nil {
		return fail(PhaseDimensions, err)
	}

	// Phase 5: Finalize
	log.Info().Msg("finalizing")
	datesFound, finalizeDur, err := Finalize(ctx, conn, log, pf.RunID)
	if err != nil {
		return fail(PhaseFinalize, err)
	}

	summary := &model.RunSummary{
		RunID:         pf.RunID.String(),
		Source:        pf.Source,
		SourceSHA256:  pf.SHA256,
		SourceID:      pf.SourceID,
		Locales:       locales,
		DatesFound:    datesFound,
		RowsStaged:    stageResult.RowsStaged,
		DurationRead:  readDur,
		DurationCopy:  stageResult.Duration,
		DurationFinal: finalizeDur,
		DurationTotal: time.Since(totalStart),
	}

	log.Info().
		Int64("dates_found", summary.DatesFound).
		Int64("rows_staged", summary.RowsStaged).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("store pipeline complete")

	return summary, nil
}
