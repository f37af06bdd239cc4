// Package history journals sync runs and their leaf operations in sqlite,
// so an interrupted copy can be reported on the next run.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmunix/ghettosync/internal/migrations"
	"github.com/vmunix/ghettosync/internal/syncer"
	_ "modernc.org/sqlite"
)

// Run is one recorded sync run.
type Run struct {
	ID          int64
	Source      string
	Destination string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Added       int
	Removed     int
	Failed      int
}

// Operation is one recorded state change of a leaf operation.
type Operation struct {
	ID        int64
	RunID     int64
	Op        syncer.Op
	RelPath   string
	Status    syncer.Status
	Detail    string
	CreatedAt time.Time
}

// Store persists runs and operations.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun inserts a new run and returns a journal bound to it.
func (s *Store) StartRun(ctx context.Context, source, destination string) (*Journal, error) {
	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (source, destination, started_at)
		VALUES (?, ?, ?)`,
		source, destination, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return &Journal{store: s, runID: id}, nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	r := &Run{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, destination, started_at, finished_at, added, removed, failed
		FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Source, &r.Destination, &r.StartedAt, &r.FinishedAt, &r.Added, &r.Removed, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return r, nil
}

// ListRuns returns runs, most recent first. A limit of 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, source, destination, started_at, finished_at, added, removed, failed
		FROM runs ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Source, &r.Destination, &r.StartedAt, &r.FinishedAt, &r.Added, &r.Removed, &r.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return results, nil
}

// Operations returns the recorded operations of a run in insertion order.
func (s *Store) Operations(ctx context.Context, runID int64) ([]*Operation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, op, rel_path, status, detail, created_at
		FROM operations WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Operation
	for rows.Next() {
		op := &Operation{}
		if err := rows.Scan(&op.ID, &op.RunID, &op.Op, &op.RelPath, &op.Status, &op.Detail, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		results = append(results, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return results, nil
}

// Incomplete returns the adds into destination whose most recent
// journal entry is still "started": a copy was interrupted, and the
// partially populated leaf now looks present at the destination.
func (s *Store) Incomplete(ctx context.Context, destination string) ([]*Operation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.run_id, o.op, o.rel_path, o.status, o.detail, o.created_at
		FROM operations o
		JOIN runs r ON r.id = o.run_id
		WHERE r.destination = ?
		  AND o.op = ?
		  AND o.status = ?
		  AND o.id = (
			SELECT MAX(o2.id) FROM operations o2
			JOIN runs r2 ON r2.id = o2.run_id
			WHERE r2.destination = r.destination AND o2.rel_path = o.rel_path
		  )
		ORDER BY o.rel_path`,
		destination, syncer.OpAdd, syncer.StatusStarted,
	)
	if err != nil {
		return nil, fmt.Errorf("list incomplete: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Operation
	for rows.Next() {
		op := &Operation{}
		if err := rows.Scan(&op.ID, &op.RunID, &op.Op, &op.RelPath, &op.Status, &op.Detail, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		results = append(results, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incomplete: %w", err)
	}
	return results, nil
}
