package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/datextract/internal/db"
	embedsql "github.com/gyeh/datextract/internal/sql"
)

// Cleanup deletes the rows of a failed run and marks it failed. Errors are
// logged, not returned: the caller is already reporting the original failure.
func Cleanup(ctx context.Context, conn db.DB, log zerolog.Logger, runID uuid.UUID) {
	start := time.Now()

	tag, err := conn.Exec(ctx, embedsql.DeleteRunDates, runID)
	if err != nil {
		log.Warn().Err(err).Msg("failed run cleanup failed (non-fatal)")
		return
	}
	if err := UpdateStatus(ctx, conn, runID, "failed"); err != nil {
		log.Warn().Err(err).Msg("marking run failed failed (non-fatal)")
		return
	}

	log.Info().
		Int64("rows_deleted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("failed run cleaned up")
}
