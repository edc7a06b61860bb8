package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/gyeh/datextract/internal/config"
	"github.com/gyeh/datextract/internal/db"
	"github.com/gyeh/datextract/internal/input"
	"github.com/gyeh/datextract/internal/parquetread"
	embedsql "github.com/gyeh/datextract/internal/sql"
)

const parquetMIME = "application/vnd.apache.parquet"

// PreflightResult holds all context resolved during the preflight phase.
type PreflightResult struct {
	// Source is the display name stored on every row: the file's base name,
	// or "-" for standard input.
	Source   string
	FilePath string
	SHA256   string
	Size     int64
	MIME     string
	// Doc is the read input; nil when importing a Parquet export.
	Doc *input.Document
	// NumRows is the export's row count; zero for text input.
	NumRows  int64
	SourceID int64
	// RunID identifies this run; it is stamped on every stored row.
	RunID   uuid.UUID
	Locales []string
	// AlreadyLoaded is true when a completed run exists for the same content
	// and locales and force mode is off. PriorRunID and PriorDates describe it.
	AlreadyLoaded bool
	PriorRunID    uuid.UUID
	PriorDates    int64
}

// Preflight reads and hashes the input, registers the source and, unless the
// same content was already stored with the same locales, registers a new run.
func Preflight(ctx context.Context, conn db.DB, log zerolog.Logger, cfg *config.Config, locales []string) (*PreflightResult, error) {
	start := time.Now()
	if locales == nil {
		locales = []string{}
	}
	pf := &PreflightResult{FilePath: cfg.FilePath, Locales: locales}

	if cfg.FromParquet {
		sha, size, err := input.HashFile(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("preflight hash: %w", err)
		}
		reader, err := parquetread.Open(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("preflight open: %w", err)
		}
		pf.NumRows = reader.NumRows()
		reader.Close()

		pf.Source = filepath.Base(cfg.FilePath)
		pf.SHA256, pf.Size, pf.MIME = sha, size, parquetMIME
	} else {
		doc, err := input.ReadFile(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("preflight read: %w", err)
		}
		pf.Doc = doc
		pf.Source, pf.SHA256, pf.Size, pf.MIME = doc.Name, doc.SHA256, doc.Size, doc.MIME
	}

	log.Info().
		Str("source", pf.Source).
		Str("sha256", pf.SHA256).
		Int64("bytes", pf.Size).
		Str("mime", pf.MIME).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	if err := conn.QueryRow(ctx, embedsql.RegisterSource, pf.Source, pf.SHA256, pf.Size, pf.MIME).Scan(&pf.SourceID); err != nil {
		return nil, fmt.Errorf("preflight register source: %w", err)
	}

	if !cfg.Force {
		err := conn.QueryRow(ctx, embedsql.LookupCompletedRun, pf.SourceID, locales).Scan(&pf.PriorRunID, &pf.PriorDates)
		switch {
		case err == nil:
			pf.AlreadyLoaded = true
			return pf, nil
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("preflight lookup run: %w", err)
		}
	}

	pf.RunID = uuid.New()
	if _, err := conn.Exec(ctx, embedsql.RegisterRun, pf.RunID, pf.SourceID, locales); err != nil {
		return nil, fmt.Errorf("preflight register run: %w", err)
	}
	return pf, nil
}
