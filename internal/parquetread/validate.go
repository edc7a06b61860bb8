package parquetread

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// requiredColumns are the export columns a stored row cannot do without.
var requiredColumns = []string{"source", "date", "year", "month", "day", "locale", "matched"}

// ValidateSchema checks that the Parquet schema carries every required column.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !columns[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("not a date export: missing columns %s", strings.Join(missing, ", "))
	}
	return nil
}
