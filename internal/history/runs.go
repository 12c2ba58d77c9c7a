package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shadowkit/internal/shadow"
)

// Trigger names what started a sweep.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerWatch  Trigger = "watch"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded sweep.
type Run struct {
	ID         string     `json:"id"`
	Project    string     `json:"project"`
	Trigger    Trigger    `json:"trigger"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Total      int        `json:"total"`
	Created    int        `json:"created"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Cancelled  bool       `json:"cancelled"`
	Errors     []string   `json:"errors,omitempty"`
}

// Finished reports whether Finish was recorded for the run.
func (r Run) Finished() bool {
	return r.FinishedAt != nil
}

// Begin records the start of a sweep and returns its id.
func (s *Store) Begin(ctx context.Context, project string, trigger Trigger) (string, error) {
	id := uuid.NewString()
	started := time.Now().UTC().Format(timeLayout)
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO runs (id, project, source, started_at) VALUES (?, ?, ?, ?)",
			id, project, string(trigger), started,
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Finish stores the sweep report for runID.
func (s *Store) Finish(ctx context.Context, runID string, report shadow.Report) error {
	finished := time.Now().UTC().Format(timeLayout)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin finish tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET finished_at = ?, total = ?, created = ?, skipped = ?, failed = ?, cancelled = ?
             WHERE id = ?`,
			finished, report.Total, report.Created, report.Skipped, len(report.Errors), boolToInt(report.Cancelled), runID,
		)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM run_errors WHERE run_id = ?", runID); err != nil {
			return fmt.Errorf("clear run errors: %w", err)
		}
		for i, msg := range report.Errors {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO run_errors (run_id, position, message) VALUES (?, ?, ?)",
				runID, i, msg,
			); err != nil {
				return fmt.Errorf("insert run error: %w", err)
			}
		}
		return tx.Commit()
	})
}

// List returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, project, source, started_at, finished_at, total, created, skipped, failed, cancelled
              FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns a run together with its error lines.
func (s *Store) Get(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project, source, started_at, finished_at, total, created, skipped, failed, cancelled
         FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT message FROM run_errors WHERE run_id = ? ORDER BY position", runID)
	if err != nil {
		return Run{}, fmt.Errorf("query run errors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return Run{}, fmt.Errorf("scan run error: %w", err)
		}
		run.Errors = append(run.Errors, msg)
	}
	return run, rows.Err()
}

// Prune deletes finished runs started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM runs WHERE finished_at IS NOT NULL AND started_at < ?",
			cutoff.UTC().Format(timeLayout),
		)
		if err != nil {
			return err
		}
		if removed, err = res.RowsAffected(); err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, "DELETE FROM run_errors WHERE run_id NOT IN (SELECT id FROM runs)")
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run       Run
		trigger   string
		started   string
		finished  sql.NullString
		cancelled int
	)
	if err := row.Scan(&run.ID, &run.Project, &trigger, &started, &finished,
		&run.Total, &run.Created, &run.Skipped, &run.Failed, &cancelled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Trigger = Trigger(strings.TrimSpace(trigger))
	run.Cancelled = cancelled != 0
	if ts, err := time.Parse(timeLayout, started); err == nil {
		run.StartedAt = ts
	}
	if finished.Valid {
		if ts, err := time.Parse(timeLayout, finished.String); err == nil {
			run.FinishedAt = &ts
		}
	}
	return run, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
