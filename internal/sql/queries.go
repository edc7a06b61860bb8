package sql

import (
	"embed"
)

// Migrations holds the schema DDL, applied in filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_source.sql
var RegisterSource string

//go:embed queries/lookup_completed_run.sql
var LookupCompletedRun string

//go:embed queries/register_run.sql
var RegisterRun string

//go:embed queries/update_run_status.sql
var UpdateRunStatus string

//go:embed queries/upsert_locales.sql
var UpsertLocales string

//go:embed queries/finalize_run.sql
var FinalizeRun string

//go:embed queries/delete_run_dates.sql
var DeleteRunDates string

//go:embed queries/analyze_dates.sql
var AnalyzeDates string
