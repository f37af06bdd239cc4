package history

import (
	"context"
	"fmt"
	"time"

	"github.com/vmunix/ghettosync/internal/syncer"
)

// Journal records operations for a single run. It satisfies syncer.Journal.
type Journal struct {
	store    *Store
	runID    int64
	finished bool
}

// RunID returns the ID of the run being journaled.
func (j *Journal) RunID() int64 {
	return j.runID
}

// Record appends one operation state change.
func (j *Journal) Record(ctx context.Context, op syncer.Op, relPath string, status syncer.Status, detail string) error {
	if j.finished {
		return ErrRunFinished
	}
	_, err := j.store.db.ExecContext(ctx, `
		INSERT INTO operations (run_id, op, rel_path, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		j.runID, op, relPath, status, detail, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// Finish stamps the run with its totals. Further Records fail.
func (j *Journal) Finish(ctx context.Context, added, removed, failed int) error {
	result, err := j.store.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, added = ?, removed = ?, failed = ?
		WHERE id = ? AND finished_at IS NULL`,
		time.Now(), added, removed, failed, j.runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRunFinished, j.runID)
	}
	j.finished = true
	return nil
}

// Ensure Journal implements syncer.Journal.
var _ syncer.Journal = (*Journal)(nil)
