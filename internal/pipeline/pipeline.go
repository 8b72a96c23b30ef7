//-------------------------------------------------------------------------
//
// salesload
//
// Copyright (c) 2025 - 2026, the salesload authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline sequences the transform-and-load stages: extract,
// normalize, sanitize, derive, prune, load. Strictly sequential, one
// batch per invocation; any stage failure aborts the run and the
// loader receives either the complete cleaned batch or nothing.
package pipeline

import (
	"context"
	"fmt"

	"github.com/retailbase/salesload/internal/config"
	"github.com/retailbase/salesload/internal/extract"
	"github.com/retailbase/salesload/internal/logging"
	"github.com/retailbase/salesload/internal/transform"
)

// Loader is the destination writer. The two modes are distinct
// operations rather than a flag on a single write call: replace is
// all-or-nothing over prior contents, append accumulates without
// deduplication.
type Loader interface {
	Table() string
	Replace(ctx context.Context, batch []transform.CleanedRecord) error
	Append(ctx context.Context, batch []transform.CleanedRecord) error
}

// Result summarizes a completed run.
type Result struct {
	RowsRead     int
	RowsExcluded int
	RowsLoaded   int
	Mode         string
	Table        string
}

// Run executes the full pipeline against the given loader.
func Run(ctx context.Context, cfg *config.Config, loader Loader) (*Result, error) {
	table, err := extract.ReadFile(cfg.Source.Path, []rune(cfg.Source.Delimiter)[0])
	if err != nil {
		return nil, err
	}

	records, err := transform.Normalize(table)
	if err != nil {
		return nil, err
	}

	rows, stats, err := transform.Sanitize(records, cfg.Source.DateFormat)
	if err != nil {
		return nil, err
	}

	batch := transform.PruneAll(transform.DeriveAll(rows))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled before load: %w", err)
	}

	switch cfg.Load.Mode {
	case config.ModeReplace:
		err = loader.Replace(ctx, batch)
	case config.ModeAppend:
		err = loader.Append(ctx, batch)
	default:
		// Config validation rejects this before Run is reached.
		err = fmt.Errorf("unknown load mode %q", cfg.Load.Mode)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		RowsRead:     stats.Input,
		RowsExcluded: stats.Excluded,
		RowsLoaded:   len(batch),
		Mode:         cfg.Load.Mode,
		Table:        loader.Table(),
	}

	logging.Info().
		Int("rows_read", result.RowsRead).
		Int("rows_excluded", result.RowsExcluded).
		Int("rows_loaded", result.RowsLoaded).
		Str("mode", result.Mode).
		Str("table", result.Table).
		Msg("Pipeline complete")

	return result, nil
}
