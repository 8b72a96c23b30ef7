package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailbase/salesload/internal/config"
	"github.com/retailbase/salesload/internal/logging"
	"github.com/retailbase/salesload/internal/transform"
)

// LoadError reports a connectivity, transaction, or constraint failure
// while writing a batch.
type LoadError struct {
	Table string
	Mode  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s into %s: %v", e.Mode, e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader writes cleaned batches into the destination table. It is the
// only writer path; concurrent pipeline runs against the same table
// are not coordinated and are the caller's responsibility to serialize.
type Loader struct {
	pool  *pgxpool.Pool
	table string
}

// NewLoader creates a Loader for the given destination table.
func NewLoader(pool *pgxpool.Pool, table string) *Loader {
	return &Loader{pool: pool, table: table}
}

// Table returns the destination table name.
func (l *Loader) Table() string { return l.table }

// Replace discards all prior rows of the destination table and writes
// the batch as its new contents. Truncate and copy share one
// transaction: a failed replace leaves the prior contents intact, and
// concurrent readers never observe an empty or half-written table.
func (l *Loader) Replace(ctx context.Context, batch []transform.CleanedRecord) error {
	if err := VerifySchema(ctx, l.pool, l.table); err != nil {
		return err
	}

	err := pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf("TRUNCATE TABLE %s", pgx.Identifier{l.table}.Sanitize())); err != nil {
			return err
		}
		return l.copyBatch(ctx, tx, batch)
	})
	if err != nil {
		return &LoadError{Table: l.table, Mode: config.ModeReplace, Err: err}
	}

	logging.Stage("load").Info().
		Str("table", l.table).
		Str("mode", config.ModeReplace).
		Int("rows", len(batch)).
		Msg("Replaced table contents")

	return nil
}

// Append adds the batch's rows to the existing table contents. No
// deduplication: appending the same batch twice produces duplicate
// rows. That is the documented contract, not a defect. The whole
// batch is one transaction, so a failed append commits nothing.
func (l *Loader) Append(ctx context.Context, batch []transform.CleanedRecord) error {
	if err := VerifySchema(ctx, l.pool, l.table); err != nil {
		return err
	}

	err := pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		return l.copyBatch(ctx, tx, batch)
	})
	if err != nil {
		return &LoadError{Table: l.table, Mode: config.ModeAppend, Err: err}
	}

	logging.Stage("load").Info().
		Str("table", l.table).
		Str("mode", config.ModeAppend).
		Int("rows", len(batch)).
		Msg("Appended batch")

	return nil
}

// copyBatch streams the batch with COPY, in batch order.
func (l *Loader) copyBatch(ctx context.Context, tx pgx.Tx, batch []transform.CleanedRecord) error {
	if len(batch) == 0 {
		return nil
	}

	n, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{l.table},
		CanonicalColumns,
		pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
			r := batch[i]
			return []any{
				r.OrderID,
				r.OrderDate,
				r.Region,
				r.Category,
				r.SubCategory,
				r.ProductID,
				r.Quantity,
				r.Discount,
				r.SalePrice,
				r.Profit,
			}, nil
		}),
	)
	if err != nil {
		return err
	}
	if n != int64(len(batch)) {
		return fmt.Errorf("copied %d of %d rows", n, len(batch))
	}
	return nil
}
