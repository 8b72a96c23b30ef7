package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/retailbase/salesload/internal/db"
	"github.com/retailbase/salesload/internal/logging"
	"github.com/retailbase/salesload/internal/pipeline"
)

// classify delegates to the pipeline's error taxonomy so Execute can
// translate a failure into the right exit code.
func classify(err error) (string, int) {
	return pipeline.Classify(err)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Info().
		Str("source", cfg.Source.Path).
		Str("table", cfg.Load.Table).
		Str("mode", cfg.Load.Mode).
		Msg("Starting pipeline")

	// SIGINT/SIGTERM cancels the run; pgx honors the context at both
	// I/O boundaries.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return &db.LoadError{Table: cfg.Load.Table, Mode: cfg.Load.Mode, Err: err}
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool, cfg.Load.Table); err != nil {
		return &db.LoadError{Table: cfg.Load.Table, Mode: cfg.Load.Mode, Err: err}
	}

	loader := db.NewLoader(pool, cfg.Load.Table)

	result, err := pipeline.Run(ctx, cfg, loader)
	if err != nil {
		return err
	}

	// History is bookkeeping, not part of the load transaction; a
	// failure here does not undo a committed load.
	if err := db.RecordLoad(ctx, pool, db.LoadRecord{
		Destination:  result.Table,
		Mode:         result.Mode,
		SourceFile:   cfg.Source.Path,
		RowsLoaded:   int64(result.RowsLoaded),
		RowsExcluded: int64(result.RowsExcluded),
	}); err != nil {
		logging.Warn().Err(err).Msg("Could not record load history")
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Loaded %d rows into %s (%s mode), %d of %d source rows excluded\n",
		result.RowsLoaded, result.Table, result.Mode,
		result.RowsExcluded, result.RowsRead)

	return nil
}
