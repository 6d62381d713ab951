// Package resultdb stores evaluation runs in a SQLite database so that runs
// over different datasets or parameter sets can be compared.
package resultdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cwbudde/algo-doa/evaluate"
	"github.com/cwbudde/algo-doa/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("resultdb: run not found")

// DB is a result database.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string, logger *slog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; SQLite serialises anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("resultdb: enabling foreign keys: %w", err)
	}

	d := &DB{db: db, logger: logging.OrDiscard(logger)}
	if err := d.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database.
func (d *DB) Close() error { return d.db.Close() }

func (d *DB) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("resultdb: loading migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(d.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("resultdb: creating sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("resultdb: creating migrate instance: %w", err)
	}
	// m is not closed: that would close the shared connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("resultdb: migration up failed: %w", err)
	}
	version, _, err := m.Version()
	if err == nil {
		d.logger.Debug("result database ready", "schema_version", version)
	}
	return nil
}

// Run describes a stored evaluation run.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Label      string
	Algorithms []string
}

// SaveReport stores report as a new run and returns its id.
func (d *DB) SaveReport(ctx context.Context, label string, report *evaluate.Report) (string, error) {
	id := uuid.New().String()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, label, algorithms) VALUES (?, ?, ?, ?)`,
		id, time.Now().UnixNano(), label, strings.Join(report.Algorithms, ","))
	if err != nil {
		return "", fmt.Errorf("resultdb: inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, algorithm, tx, rx, true_bearing, estimated, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	n := 0
	for _, name := range report.Algorithms {
		for _, r := range report.Results[name] {
			if _, err := stmt.ExecContext(ctx, id, name, r.Key.Tx, r.Key.Rx, r.TrueBearing, r.Estimated, r.Error); err != nil {
				return "", fmt.Errorf("resultdb: inserting result %s/%s: %w", name, r.Key, err)
			}
			n++
		}
	}

	for _, s := range report.Skipped {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skipped (run_id, pair, reason) VALUES (?, ?, ?)`, id, s.Key, s.Reason); err != nil {
			return "", fmt.Errorf("resultdb: inserting skipped pair: %w", err)
		}
	}
	for _, f := range report.Failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO failures (run_id, algorithm, pair, message) VALUES (?, ?, ?, ?)`,
			id, f.Algorithm, f.Key, f.Err.Error()); err != nil {
			return "", fmt.Errorf("resultdb: inserting failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	d.logger.Info("stored evaluation run", "run_id", id, "label", label, "results", n)
	return id, nil
}

// Runs lists stored runs, newest first.
func (d *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, created_at, label, algorithms FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r     Run
			nanos int64
			algos string
		)
		if err := rows.Scan(&r.ID, &nanos, &r.Label, &algos); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(0, nanos)
		if algos != "" {
			r.Algorithms = strings.Split(algos, ",")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (d *DB) checkRun(ctx context.Context, runID string) error {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// Summary is the aggregate of one algorithm within a run. The standard
// deviation is the population one.
type Summary struct {
	Algorithm string
	Evaluated int
	Skipped   int // pairs of the run without a complete array
	Failed    int
	MeanError float64
	StdError  float64
}

// Summaries aggregates the stored errors of runID per algorithm, in the
// run's algorithm order.
func (d *DB) Summaries(ctx context.Context, runID string) ([]Summary, error) {
	if err := d.checkRun(ctx, runID); err != nil {
		return nil, err
	}

	var algos string
	if err := d.db.QueryRowContext(ctx, `SELECT algorithms FROM runs WHERE id = ?`, runID).Scan(&algos); err != nil {
		return nil, err
	}

	var skipped int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM skipped WHERE run_id = ?`, runID).Scan(&skipped); err != nil {
		return nil, err
	}

	out := make([]Summary, 0)
	for _, name := range strings.Split(algos, ",") {
		if name == "" {
			continue
		}
		s := Summary{Algorithm: name, Skipped: skipped}
		var mean, meanSq sql.NullFloat64
		err := d.db.QueryRowContext(ctx,
			`SELECT COUNT(*), AVG(error), AVG(error * error) FROM results WHERE run_id = ? AND algorithm = ?`,
			runID, name).Scan(&s.Evaluated, &mean, &meanSq)
		if err != nil {
			return nil, err
		}
		if err := d.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM failures WHERE run_id = ? AND algorithm = ?`,
			runID, name).Scan(&s.Failed); err != nil {
			return nil, err
		}
		s.MeanError, s.StdError = popStats(mean, meanSq)
		out = append(out, s)
	}
	return out, nil
}

// Results returns the stored per-pair results of algorithm in runID in
// pair-key order.
func (d *DB) Results(ctx context.Context, runID, algorithm string) ([]evaluate.PairResult, error) {
	if err := d.checkRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT tx, rx, true_bearing, estimated, error FROM results
		 WHERE run_id = ? AND algorithm = ? ORDER BY tx, rx`, runID, algorithm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []evaluate.PairResult
	for rows.Next() {
		r := evaluate.PairResult{Algorithm: algorithm}
		if err := rows.Scan(&r.Key.Tx, &r.Key.Rx, &r.TrueBearing, &r.Estimated, &r.Error); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Skipped returns the keys skipped in runID.
func (d *DB) Skipped(ctx context.Context, runID string) ([]evaluate.SkippedPair, error) {
	if err := d.checkRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := d.db.QueryContext(ctx, `SELECT pair, reason FROM skipped WHERE run_id = ? ORDER BY pair`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []evaluate.SkippedPair
	for rows.Next() {
		var s evaluate.SkippedPair
		if err := rows.Scan(&s.Key, &s.Reason); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteRun removes runID and everything stored with it.
func (d *DB) DeleteRun(ctx context.Context, runID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
