package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/datextract/internal/config"
	"github.com/gyeh/datextract/internal/model"
	embedsql "github.com/gyeh/datextract/internal/sql"
	"github.com/gyeh/datextract/pkg/extractor"
)

var datesTable = pgx.Identifier{"datex", "extracted_dates"}

func q(sql string) string { return regexp.QuoteMeta(sql) }

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func writeInput(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "letter.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestSliceReader(t *testing.T) {
	rows := make([]model.DateRow, 5)
	r := NewSliceReader(rows)
	buf := make([]model.DateRow, 2)

	var total int
	for {
		n, err := r.Read(buf)
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, 5, total)

	n, err := NewSliceReader(nil).Read(buf)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestStage_CountsRows(t *testing.T) {
	mock := newMock(t)
	mock.ExpectCopyFrom(datesTable, model.DateColumns()).WillReturnResult(3)

	pf := &PreflightResult{RunID: uuid.New()}
	rows := []model.DateRow{{Seq: 9}, {Seq: 9}, {Seq: 9}}
	res, err := Stage(context.Background(), mock, zerolog.Nop(), pf, NewSliceReader(rows))
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.RowsRead)
	assert.Equal(t, int64(3), res.RowsStaged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStage_CopyError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectCopyFrom(datesTable, model.DateColumns()).WillReturnError(errors.New("disk full"))

	rows := make([]model.DateRow, readBatchSize*3)
	_, err := Stage(context.Background(), mock, zerolog.Nop(), &PreflightResult{RunID: uuid.New()}, NewSliceReader(rows))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage copy")
}

type failingReader struct{}

func (failingReader) Read([]model.DateRow) (int, error) { return 0, errors.New("corrupt page") }

func TestStage_ReadError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectCopyFrom(datesTable, model.DateColumns()).WillReturnResult(0)

	_, err := Stage(context.Background(), mock, zerolog.Nop(), &PreflightResult{RunID: uuid.New()}, failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt page")
}

func TestPreflight_NewRun(t *testing.T) {
	mock := newMock(t)
	path := writeInput(t, "Signed 04/07/2025")

	mock.ExpectQuery(q(embedsql.RegisterSource)).
		WithArgs("letter.txt", pgxmock.AnyArg(), int64(17), pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"source_id"}).AddRow(int64(7)))
	mock.ExpectQuery(q(embedsql.LookupCompletedRun)).
		WithArgs(int64(7), []string{"en-US"}).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(q(embedsql.RegisterRun)).
		WithArgs(pgxmock.AnyArg(), int64(7), []string{"en-US"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	cfg := &config.Config{FilePath: path}
	pf, err := Preflight(context.Background(), mock, zerolog.Nop(), cfg, []string{"en-US"})
	require.NoError(t, err)

	assert.False(t, pf.AlreadyLoaded)
	assert.Equal(t, int64(7), pf.SourceID)
	assert.NotEqual(t, uuid.Nil, pf.RunID)
	assert.Equal(t, "Signed 04/07/2025", pf.Doc.Text)
	assert.Len(t, pf.SHA256, 64)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreflight_AlreadyLoaded(t *testing.T) {
	mock := newMock(t)
	path := writeInput(t, "Signed 04/07/2025")
	prior := uuid.New()

	mock.ExpectQuery(q(embedsql.RegisterSource)).
		WillReturnRows(mock.NewRows([]string{"source_id"}).AddRow(int64(7)))
	mock.ExpectQuery(q(embedsql.LookupCompletedRun)).
		WillReturnRows(mock.NewRows([]string{"run_id", "dates_found"}).AddRow(prior, int64(1)))

	pf, err := Preflight(context.Background(), mock, zerolog.Nop(), &config.Config{FilePath: path}, []string{"en-US"})
	require.NoError(t, err)

	assert.True(t, pf.AlreadyLoaded)
	assert.Equal(t, prior, pf.PriorRunID)
	assert.Equal(t, int64(1), pf.PriorDates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreflight_ForceSkipsLookup(t *testing.T) {
	mock := newMock(t)
	path := writeInput(t, "nothing here")

	mock.ExpectQuery(q(embedsql.RegisterSource)).
		WillReturnRows(mock.NewRows([]string{"source_id"}).AddRow(int64(1)))
	mock.ExpectExec(q(embedsql.RegisterRun)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	cfg := &config.Config{FilePath: path, Force: true}
	pf, err := Preflight(context.Background(), mock, zerolog.Nop(), cfg, nil)
	require.NoError(t, err)
	assert.False(t, pf.AlreadyLoaded)
	assert.Equal(t, []string{}, pf.Locales)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreflight_MissingFile(t *testing.T) {
	mock := newMock(t)
	cfg := &config.Config{FilePath: filepath.Join(t.TempDir(), "absent.txt")}
	_, err := Preflight(context.Background(), mock, zerolog.Nop(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preflight read")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertDimensions(t *testing.T) {
	mock := newMock(t)
	runID := uuid.New()
	mock.ExpectExec(q(embedsql.UpsertLocales)).WithArgs(runID).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	require.NoError(t, UpsertDimensions(context.Background(), mock, zerolog.Nop(), runID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalize(t *testing.T) {
	mock := newMock(t)
	runID := uuid.New()
	mock.ExpectQuery(q(embedsql.FinalizeRun)).WithArgs(runID).
		WillReturnRows(mock.NewRows([]string{"dates_found"}).AddRow(int64(4)))
	mock.ExpectExec(q(embedsql.AnalyzeDates)).WillReturnResult(pgxmock.NewResult("ANALYZE", 0))

	n, _, err := Finalize(context.Background(), mock, zerolog.Nop(), runID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanup(t *testing.T) {
	mock := newMock(t)
	runID := uuid.New()
	mock.ExpectExec(q(embedsql.DeleteRunDates)).WithArgs(runID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(q(embedsql.UpdateRunStatus)).WithArgs(runID, "failed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	Cleanup(context.Background(), mock, zerolog.Nop(), runID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanup_DeleteErrorIsLogged(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(q(embedsql.DeleteRunDates)).WillReturnError(errors.New("connection reset"))

	Cleanup(context.Background(), mock, zerolog.Nop(), uuid.New())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectPreflight(mock pgxmock.PgxPoolIface) {
	mock.ExpectQuery(q(embedsql.RegisterSource)).
		WillReturnRows(mock.NewRows([]string{"source_id"}).AddRow(int64(1)))
	mock.ExpectQuery(q(embedsql.LookupCompletedRun)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(q(embedsql.RegisterRun)).WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func TestRun_Text(t *testing.T) {
	mock := newMock(t)
	path := writeInput(t, "Signed 04/07/2025, revised November 1, 2025")
	ex, err := extractor.New([]string{"en-US"})
	require.NoError(t, err)

	expectPreflight(mock)
	mock.ExpectExec(q(embedsql.UpdateRunStatus)).
		WithArgs(pgxmock.AnyArg(), "staging").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCopyFrom(datesTable, model.DateColumns()).WillReturnResult(2)
	mock.ExpectExec(q(embedsql.UpsertLocales)).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(q(embedsql.FinalizeRun)).
		WillReturnRows(mock.NewRows([]string{"dates_found"}).AddRow(int64(2)))
	mock.ExpectExec(q(embedsql.AnalyzeDates)).WillReturnResult(pgxmock.NewResult("ANALYZE", 0))

	summary, err := Run(context.Background(), mock, zerolog.Nop(), &config.Config{FilePath: path}, ex)
	require.NoError(t, err)

	assert.False(t, summary.AlreadyLoaded)
	assert.Equal(t, int64(2), summary.DatesFound)
	assert.Equal(t, int64(2), summary.RowsStaged)
	assert.Equal(t, "letter.txt", summary.Source)
	assert.Equal(t, []string{"en-US"}, summary.Locales)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_AlreadyLoaded(t *testing.T) {
	mock := newMock(t)
	path := writeInput(t, "Signed 04/07/2025")
	ex, err := extractor.New([]string{"en-US"})
	require.NoError(t, err)
	prior := uuid.New()

	mock.ExpectQuery(q(embedsql.RegisterSource)).
		WillReturnRows(mock.NewRows([]string{"source_id"}).AddRow(int64(1)))
	mock.ExpectQuery(q(embedsql.LookupCompletedRun)).
		WillReturnRows(mock.NewRows([]string{"run_id", "dates_found"}).AddRow(prior, int64(1)))

	summary, err := Run(context.Background(), mock, zerolog.Nop(), &config.Config{FilePath: path}, ex)
	require.NoError(t, err)
	assert.True(t, summary.AlreadyLoaded)
	assert.Equal(t, prior.String(), summary.RunID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_StageFailureCleansUp(t *testing.T) {
	mock := newMock(t)
	path := writeInput(t, "Signed 04/07/2025")
	ex, err := extractor.New([]string{"en-US"})
	require.NoError(t, err)

	expectPreflight(mock)
	mock.ExpectExec(q(embedsql.UpdateRunStatus)).
		WithArgs(pgxmock.AnyArg(), "staging").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCopyFrom(datesTable, model.DateColumns()).WillReturnError(errors.New("unique violation"))
	mock.ExpectExec(q(embedsql.DeleteRunDates)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(q(embedsql.UpdateRunStatus)).
		WithArgs(pgxmock.AnyArg(), "failed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	_, err = Run(context.Background(), mock, zerolog.Nop(), &config.Config{FilePath: path}, ex)
	require.Error(t, err)

	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseStage, pe.Phase)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_PreflightFailure(t *testing.T) {
	mock := newMock(t)
	path := writeInput(t, "x")
	ex, err := extractor.New([]string{"en-US"})
	require.NoError(t, err)

	mock.ExpectQuery(q(embedsql.RegisterSource)).WillReturnError(errors.New("relation does not exist"))

	_, err = Run(context.Background(), mock, zerolog.Nop(), &config.Config{FilePath: path}, ex)
	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhasePreflight, pe.Phase)
	assert.Equal(t, "preflight: preflight register source: relation does not exist", err.Error())
}
