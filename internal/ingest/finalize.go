package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/datextract/internal/db"
	embedsql "github.com/gyeh/datextract/internal/sql"
)

// Finalize marks the run complete, records its date count and runs ANALYZE.
func Finalize(ctx context.Context, conn db.DB, log zerolog.Logger, runID uuid.UUID) (int64, time.Duration, error) {
	start := time.Now()

	var datesFound int64
	if err := conn.QueryRow(ctx, embedsql.FinalizeRun, runID).Scan(&datesFound); err != nil {
		return 0, 0, fmt.Errorf("finalize run: %w", err)
	}
	log.Info().Int64("dates_found", datesFound).Msg("run complete")

	if _, err := conn.Exec(ctx, embedsql.AnalyzeDates); err != nil {
		return 0, 0, fmt.Errorf("analyze dates: %w", err)
	}
	log.Info().Msg("ANALYZE complete")

	return datesFound, time.Since(start), nil
}
