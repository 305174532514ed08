package ingest

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hurttlocker/shelfgraph/internal/parse"
)

// maxLineSize bounds a single input line. Titles run long in real dumps but
// nowhere near this.
const maxLineSize = 1 << 20

// ParseStream runs the full parse over r and returns the raw (un-finalized)
// tables plus a run summary. A truncated stream still materializes its final
// partial record.
func ParseStream(r io.Reader) (*Tables, *Result, error) {
	tables := &Tables{}
	result := &Result{}
	acc := &parse.Accumulator{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		if rec := acc.Feed(scanner.Text()); rec != nil {
			collect(rec, tables, result)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading input: %w", err)
	}

	if rec := acc.Flush(); rec != nil {
		collect(rec, tables, result)
	}

	result.Products = len(tables.Products)
	result.Edges = len(tables.Edges)
	result.Reviews = len(tables.Reviews)
	return tables, result, nil
}

func collect(rec *parse.Record, tables *Tables, result *Result) {
	result.RecordsSeen++
	if !Materialize(rec, tables) {
		result.Discontinued++
	}
}

// ParseFile parses a metadata dump from disk, transparently decompressing
// .gz files, and finalizes the tables.
func ParseFile(path string) (*Tables, *Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("opening gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	tables, result, err := ParseStream(r)
	if err != nil {
		return nil, nil, err
	}
	if err := Finalize(tables); err != nil {
		return nil, nil, err
	}
	return tables, result, nil
}

// FormatResult renders a run summary for CLI output.
func FormatResult(r *Result) string {
	return fmt.Sprintf("Parsed %d records (%d discontinued, excluded)\nSaved: %d products, %d edges, %d reviews\n",
		r.RecordsSeen, r.Discontinued, r.Products, r.Edges, r.Reviews)
}
