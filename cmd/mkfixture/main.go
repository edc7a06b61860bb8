// mkfixture creates a small representative Parquet fixture from a large date export.
// Two-pass: first buckets all rows by locale, then takes rows round-robin across
// locales so every rule set that produced dates is represented.
// Usage: go run ./cmd/mkfixture --in testdata/corpus.parquet --out testdata/corpus-small.parquet --rows 200
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	goparquet "github.com/parquet-go/parquet-go"

	"github.com/gyeh/datextract/internal/model"
	"github.com/gyeh/datextract/internal/parquetread"
)

func main() {
	in := flag.String("in", "testdata/corpus.parquet", "input parquet export")
	out := flag.String("out", "testdata/corpus-small.parquet", "output parquet")
	maxRows := flag.Int("rows", 200, "max rows to output")
	checkOnly := flag.Bool("check", false, "only print stats, don't write")
	flag.Parse()

	reader, err := parquetread.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	// Pass 1: read ALL rows, bucket by locale.
	buckets := make(map[string][]model.DateRow)
	layouts := make(map[string]int)
	buf := make([]model.DateRow, 1024)
	var totalRead int
	for {
		n, readErr := reader.Read(buf)
		for i := 0; i < n; i++ {
			totalRead++
			row := buf[i]
			layouts[row.Layout]++
			if len(buckets[row.Locale]) < *maxRows {
				buckets[row.Locale] = append(buckets[row.Locale], row)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "read: %v\n", readErr)
			os.Exit(1)
		}
	}
	fmt.Printf("Scanned %d rows\n", totalRead)

	locales := make([]string, 0, len(buckets))
	for loc := range buckets {
		locales = append(locales, loc)
	}
	slices.Sort(locales)

	if *checkOnly {
		fmt.Println("Rows by locale (first -rows kept per locale):")
		for _, loc := range locales {
			fmt.Printf("  %-10s %d\n", loc, len(buckets[loc]))
		}
		fmt.Printf("Distinct layouts: %d\n", len(layouts))
		return
	}

	// Pass 2: round-robin across locales.
	var selected []model.DateRow
	for i := 0; len(selected) < *maxRows; i++ {
		added := false
		for _, loc := range locales {
			if i < len(buckets[loc]) && len(selected) < *maxRows {
				selected = append(selected, buckets[loc][i])
				added = true
			}
		}
		if !added {
			break
		}
	}
	for i := range selected {
		selected[i].Seq = int32(i + 1)
	}

	// Write output
	outFile, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	writer := goparquet.NewGenericWriter[model.DateRow](outFile)
	if _, err := writer.Write(selected); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close writer: %v\n", err)
		os.Exit(1)
	}

	counts := make(map[string]int)
	for _, row := range selected {
		counts[row.Locale]++
	}
	fmt.Printf("Wrote %d rows to %s\n", len(selected), *out)
	fmt.Println("Locale distribution:")
	for _, loc := range locales {
		if c := counts[loc]; c > 0 {
			fmt.Printf("  %-10s %d\n", loc, c)
		}
	}
}
