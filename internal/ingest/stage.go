package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/datextract/internal/db"
	"github.com/gyeh/datextract/internal/model"
	embedsql "github.com/gyeh/datextract/internal/sql"
)

const readBatchSize = 1024

// RowReader yields rows in batches, returning io.EOF after the last one.
// *parquetread.Reader implements it.
type RowReader interface {
	Read(rows []model.DateRow) (int, error)
}

// SliceReader is a RowReader over rows already in memory.
type SliceReader struct {
	rows []model.DateRow
}

// NewSliceReader returns a RowReader over rows.
func NewSliceReader(rows []model.DateRow) *SliceReader {
	return &SliceReader{rows: rows}
}

func (r *SliceReader) Read(dst []model.DateRow) (int, error) {
	n := copy(dst, r.rows)
	r.rows = r.rows[n:]
	if len(r.rows) == 0 {
		return n, io.EOF
	}
	return n, nil
}

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RowsRead   int64
	RowsStaged int64
	Duration   time.Duration
}

// Stage streams rows from src and COPY-loads them into datex.extracted_dates
// via a channel-backed CopyFromSource. Every row is stamped with the run id
// and renumbered in read order.
func Stage(ctx context.Context, conn db.DB, log zerolog.Logger, pf *PreflightResult, src RowReader) (*StageResult, error) {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	ch := make(chan *model.DateRow, readBatchSize)

	var rowsRead, rowsStaged int64

	// Producer: read → stamp → push to channel
	g.Go(func() error {
		defer close(ch)
		buf := make([]model.DateRow, readBatchSize)
		for {
			n, readErr := src.Read(buf)
			for i := 0; i < n; i++ {
				rowsRead++
				row := buf[i]
				row.RunID = pf.RunID
				row.Seq = int32(rowsRead)

				select {
				case ch <- &row:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			if readErr != nil {
				return fmt.Errorf("read rows at row %d: %w", rowsRead, readErr)
			}
		}
	})

	// Consumer: COPY from channel into datex.extracted_dates
	g.Go(func() error {
		n, err := conn.CopyFrom(gctx,
			pgx.Identifier{"datex", "extracted_dates"},
			model.DateColumns(),
			db.NewChannelSource(ch),
		)
		// Unblock the producer if the copy stopped before the channel closed.
		for range ch {
		}
		if err != nil {
			return fmt.Errorf("stage copy: %w", err)
		}
		rowsStaged = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_read", rowsRead).
		Int64("rows_staged", rowsStaged).
		Str("duration", dur.String()).
		Msg("staging complete")

	return &StageResult{
		RowsRead:   rowsRead,
		RowsStaged: rowsStaged,
		Duration:   dur,
	}, nil
}

// UpdateStatus updates the run status.
func UpdateStatus(ctx context.Context, conn db.DB, runID uuid.UUID, status string) error {
	_, err := conn.Exec(ctx, embedsql.UpdateRunStatus, runID, status)
	return err
}
