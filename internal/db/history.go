//-------------------------------------------------------------------------
//
// salesload
//
// Copyright (c) 2025 - 2026, the salesload authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailbase/salesload/internal/logging"
	"github.com/retailbase/salesload/pkg/version"
)

const historyTable = "salesload_history"

// createHistoryTableSQL creates the load history table if it doesn't exist.
const createHistoryTableSQL = `
CREATE TABLE IF NOT EXISTS salesload_history (
    id            BIGSERIAL PRIMARY KEY,
    loaded_at     TIMESTAMPTZ NOT NULL,
    destination   TEXT NOT NULL,
    mode          TEXT NOT NULL,
    source_file   TEXT NOT NULL,
    rows_loaded   BIGINT NOT NULL,
    rows_excluded BIGINT NOT NULL,
    tool_version  TEXT NOT NULL
)`

// LoadRecord describes one completed load for the audit history.
type LoadRecord struct {
	LoadedAt     time.Time
	Destination  string
	Mode         string
	SourceFile   string
	RowsLoaded   int64
	RowsExcluded int64
	ToolVersion  string
}

// RecordLoad appends one entry to the load history. The history is
// bookkeeping about completed loads, not part of the load transaction.
func RecordLoad(ctx context.Context, pool *pgxpool.Pool, rec LoadRecord) error {
	if _, err := pool.Exec(ctx, createHistoryTableSQL); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}

	if rec.LoadedAt.IsZero() {
		rec.LoadedAt = time.Now().UTC()
	}
	if rec.ToolVersion == "" {
		rec.ToolVersion = version.Short()
	}

	_, err := pool.Exec(ctx, `
        INSERT INTO salesload_history
            (loaded_at, destination, mode, source_file, rows_loaded, rows_excluded, tool_version)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, rec.LoadedAt, rec.Destination, rec.Mode, rec.SourceFile,
		rec.RowsLoaded, rec.RowsExcluded, rec.ToolVersion)
	if err != nil {
		return fmt.Errorf("failed to record load: %w", err)
	}

	logging.Debug().
		Str("destination", rec.Destination).
		Str("mode", rec.Mode).
		Int64("rows_loaded", rec.RowsLoaded).
		Msg("Recorded load in history")

	return nil
}

// LoadHistory retrieves the load history, most recent first.
func LoadHistory(ctx context.Context, pool *pgxpool.Pool) ([]LoadRecord, error) {
	rows, err := pool.Query(ctx, `
        SELECT loaded_at, destination, mode, source_file,
               rows_loaded, rows_excluded, tool_version
        FROM salesload_history
        ORDER BY loaded_at DESC, id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []LoadRecord
	for rows.Next() {
		var rec LoadRecord
		if err := rows.Scan(&rec.LoadedAt, &rec.Destination, &rec.Mode,
			&rec.SourceFile, &rec.RowsLoaded, &rec.RowsExcluded, &rec.ToolVersion); err != nil {
			return nil, err
		}
		history = append(history, rec)
	}

	return history, rows.Err()
}

// DropHistory drops the history table.
func DropHistory(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", historyTable))
	return err
}

// HistoryExists checks if the history table exists.
func HistoryExists(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1 AND table_schema = current_schema()
        )
    `, historyTable).Scan(&exists)
	return exists, err
}
