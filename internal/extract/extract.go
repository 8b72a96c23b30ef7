//-------------------------------------------------------------------------
//
// salesload
//
// Copyright (c) 2025 - 2026, the salesload authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package extract reads the raw delimited sales export into memory.
// Fetching the export from its remote origin is out of scope; the
// extraction boundary is a local file produced by that step.
package extract

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/retailbase/salesload/internal/logging"
)

// ExtractionError reports an unreachable or unreadable source file.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Table is the raw tabular content of one source file: the header row
// and every data row, in file order. Values are untyped text.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadFile reads a delimited text file into a Table. The first row is
// the header. Rows keep their file order; a file with a header and no
// data rows is valid (the sanitizer decides whether an empty batch is
// an error).
func ReadFile(path string, delimiter rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delimiter
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	if len(records) == 0 {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("file is empty, expected a header row")}
	}

	t := &Table{
		Columns: records[0],
		Rows:    records[1:],
	}

	logging.Stage("extract").Info().
		Str("path", path).
		Int("columns", len(t.Columns)).
		Int("rows", len(t.Rows)).
		Msg("Read source file")

	return t, nil
}
