// SPDX-License-Identifier: MIT

package sink

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS recom_assignment (
	batch_id TEXT    NOT NULL,
	run_id   INTEGER NOT NULL,
	geoid    TEXT    NOT NULL,
	district INTEGER NOT NULL,
	PRIMARY KEY (batch_id, run_id, geoid)
);
CREATE TABLE IF NOT EXISTS recom_steps (
	batch_id  TEXT    NOT NULL,
	run_id    INTEGER NOT NULL,
	step      INTEGER NOT NULL,
	cut_edges INTEGER NOT NULL,
	min_pop   BIGINT  NOT NULL,
	max_pop   BIGINT  NOT NULL,
	pop_range BIGINT  NOT NULL,
	PRIMARY KEY (batch_id, run_id, step)
);`

// Postgres bulk-loads results with COPY into recom_assignment and
// recom_steps. Each run is one transaction.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres opens dsn with the lib/pq driver, pings it and creates the
// tables if missing.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sink: postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sink: postgres ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sink: postgres schema: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Write implements Sink. Rows of an earlier write of the same run are replaced.
func (s *Postgres) Write(ctx context.Context, r Result) (err error) {
	rows, err := r.Rows()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sink: postgres begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"recom_assignment", "recom_steps"} {
		q := "DELETE FROM " + pq.QuoteIdentifier(table) + " WHERE batch_id = $1 AND run_id = $2"
		if _, err = tx.ExecContext(ctx, q, r.BatchID, r.RunID); err != nil {
			return fmt.Errorf("sink: postgres clear %s: %w", table, err)
		}
	}

	err = copyRows(ctx, tx, pq.CopyIn("recom_assignment", "batch_id", "run_id", "geoid", "district"),
		len(rows), func(i int) []any {
			return []any{r.BatchID, r.RunID, rows[i][0], r.Final.Part(i)}
		})
	if err != nil {
		return err
	}
	err = copyRows(ctx, tx, pq.CopyIn("recom_steps", "batch_id", "run_id", "step", "cut_edges", "min_pop", "max_pop", "pop_range"),
		len(r.Steps), func(i int) []any {
			st := r.Steps[i]
			return []any{r.BatchID, r.RunID, st.Step, st.CutEdges, st.MinPop, st.MaxPop, st.PopRange}
		})
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sink: postgres commit run %d: %w", r.RunID, err)
	}

	return nil
}

func copyRows(ctx context.Context, tx *sql.Tx, copySQL string, n int, row func(int) []any) error {
	stmt, err := tx.PrepareContext(ctx, copySQL)
	if err != nil {
		return fmt.Errorf("sink: postgres prepare copy: %w", err)
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return fmt.Errorf("sink: postgres copy row %d: %w", i, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("sink: postgres flush copy: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (s *Postgres) Close() error { return s.db.Close() }
