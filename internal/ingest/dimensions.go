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

// UpsertDimensions records the locales that produced dates in this run.
func UpsertDimensions(ctx context.Context, conn db.DB, log zerolog.Logger, runID uuid.UUID) error {
	start := time.Now()

	tag, err := conn.Exec(ctx, embedsql.UpsertLocales, runID)
	if err != nil {
		return fmt.Errorf("upsert locales: %w", err)
	}
	log.Info().
		Int64("locales_added", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("locales upserted")

	return nil
}
