package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const importLockName = "image_import"

var _ RunRepository = (*RunRepo)(nil)

type RunRepo struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Load() (*Run, error) {
	var run Run
	var lastRunAt, completedAt sql.NullTime
	var processedIDs, updatedEntries string

	err := r.db.QueryRow(`
		SELECT status, started_at, last_run_at, completed_at, processed_ids, updated_entries
		FROM import_runs
		WHERE id = 1
	`).Scan(&run.Status, &run.StartedAt, &lastRunAt, &completedAt, &processedIDs, &updatedEntries)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load import run: %w", err)
	}

	if lastRunAt.Valid {
		run.LastRunAt = &lastRunAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	if err := json.Unmarshal([]byte(processedIDs), &run.ProcessedIDs); err != nil {
		return nil, fmt.Errorf("failed to decode processed ids: %w", err)
	}
	if err := json.Unmarshal([]byte(updatedEntries), &run.UpdatedEntries); err != nil {
		return nil, fmt.Errorf("failed to decode updated entries: %w", err)
	}

	return &run, nil
}

func (r *RunRepo) Save(run *Run) error {
	processedIDs, err := json.Marshal(run.ProcessedIDs)
	if err != nil {
		return fmt.Errorf("failed to encode processed ids: %w", err)
	}
	updatedEntries, err := json.Marshal(run.UpdatedEntries)
	if err != nil {
		return fmt.Errorf("failed to encode updated entries: %w", err)
	}

	var lastRunAt, completedAt interface{}
	if run.LastRunAt != nil {
		lastRunAt = *run.LastRunAt
	}
	if run.CompletedAt != nil {
		completedAt = *run.CompletedAt
	}

	_, err = r.db.Exec(`
		INSERT INTO import_runs (id, status, started_at, last_run_at, completed_at, processed_ids, updated_entries)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			started_at = excluded.started_at,
			last_run_at = excluded.last_run_at,
			completed_at = excluded.completed_at,
			processed_ids = excluded.processed_ids,
			updated_entries = excluded.updated_entries
	`, run.Status, run.StartedAt, lastRunAt, completedAt, string(processedIDs), string(updatedEntries))

	if err != nil {
		return fmt.Errorf("failed to save import run: %w", err)
	}

	return nil
}

func (r *RunRepo) Reset() error {
	_, err := r.db.Exec(`DELETE FROM import_runs WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("failed to reset import run: %w", err)
	}
	return nil
}

func (r *RunRepo) AcquireLock(ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	res, err := r.db.Exec(`
		INSERT INTO run_locks (name, expires_at) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET expires_at = excluded.expires_at
		WHERE run_locks.expires_at <= ?
	`, importLockName, now.Add(ttl), now)

	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read lock result: %w", err)
	}

	return n > 0, nil
}

func (r *RunRepo) LockHeld() (bool, error) {
	var expiresAt time.Time
	err := r.db.QueryRow(`
		SELECT expires_at FROM run_locks WHERE name = ?
	`, importLockName).Scan(&expiresAt)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check run lock: %w", err)
	}

	return expiresAt.After(time.Now().UTC()), nil
}

func (r *RunRepo) ReleaseLock() error {
	_, err := r.db.Exec(`DELETE FROM run_locks WHERE name = ?`, importLockName)
	if err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}
