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

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailbase/salesload/internal/transform"
)

// CanonicalColumns is the destination column set, in insertion order.
// It is identical under replace and append loads; downstream consumers
// aggregate against exactly this set.
var CanonicalColumns = []string{
	"order_id",
	"order_date",
	"region",
	"category",
	"sub_category",
	"product_id",
	"quantity",
	"discount",
	"sale_price",
	"profit",
}

// Destination table DDL. Money columns are NUMERIC at the same scale
// the deriver rounds to, so loaded values and query results agree.
const createTableSQL = `
CREATE TABLE IF NOT EXISTS %s (
    order_id     BIGINT NOT NULL,
    order_date   DATE NOT NULL,
    region       TEXT NOT NULL,
    category     TEXT NOT NULL,
    sub_category TEXT NOT NULL,
    product_id   TEXT NOT NULL,
    quantity     INTEGER NOT NULL,
    discount     NUMERIC(12,2) NOT NULL,
    sale_price   NUMERIC(12,2) NOT NULL,
    profit       NUMERIC(12,2) NOT NULL
)`

// EnsureSchema creates the destination table if it does not exist.
// An existing table is left untouched; VerifySchema decides whether
// its column set is usable.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, table string) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(createTableSQL, pgx.Identifier{table}.Sanitize()))
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// DropSchema drops the destination table.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, table string) error {
	_, err := pool.Exec(ctx,
		fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{table}.Sanitize()))
	return err
}

// VerifySchema checks that the destination table's column set equals
// the canonical schema. A mismatch is a SchemaError: loading into a
// drifted table would silently break every downstream query.
func VerifySchema(ctx context.Context, pool *pgxpool.Pool, table string) error {
	rows, err := pool.Query(ctx, `
        SELECT column_name FROM information_schema.columns
        WHERE table_name = $1 AND table_schema = current_schema()
    `, table)
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	found := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(found) == 0 {
		return &transform.SchemaError{
			Subject: table,
			Detail:  "destination table does not exist",
		}
	}
	for _, col := range CanonicalColumns {
		if !found[col] {
			return &transform.SchemaError{
				Subject: table,
				Detail:  fmt.Sprintf("destination is missing column %q", col),
			}
		}
	}
	if len(found) != len(CanonicalColumns) {
		return &transform.SchemaError{
			Subject: table,
			Detail: fmt.Sprintf("destination has %d columns, expected %d",
				len(found), len(CanonicalColumns)),
		}
	}
	return nil
}
