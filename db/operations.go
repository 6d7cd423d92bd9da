// ABOUTME: Database operations for operation_state and operation_log tables
// ABOUTME: Records store lifecycle events so recent request outcomes can be inspected
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OperationState is the last known outcome of one store operation.
type OperationState struct {
	Op             string
	Slice          string
	LastPhase      string
	ErrorMessage   *string
	LastStartedAt  *time.Time
	LastFinishedAt *time.Time
	UpdatedAt      time.Time
}

// OperationEvent is one journaled lifecycle transition.
type OperationEvent struct {
	ID           string
	Op           string
	Slice        string
	Phase        string
	ErrorMessage *string
	OccurredAt   time.Time
}

// RecordOperation appends an event to the log and folds it into operation_state.
// A pending phase stamps last_started_at; any other phase stamps last_finished_at.
func RecordOperation(db *sql.DB, slice, op, phase, errMsg string, at time.Time) error {
	var errVal sql.NullString
	if errMsg != "" {
		errVal = sql.NullString{String: errMsg, Valid: true}
	}
	at = at.UTC()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO operation_log (id, op, slice, phase, error_message, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), op, slice, phase, errVal, at); err != nil {
		return fmt.Errorf("failed to append operation log: %w", err)
	}

	var started, finished sql.NullTime
	if phase == "pending" {
		started = sql.NullTime{Time: at, Valid: true}
	} else {
		finished = sql.NullTime{Time: at, Valid: true}
	}

	if _, err := tx.Exec(`
		INSERT INTO operation_state (op, slice, last_phase, error_message, last_started_at, last_finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(op) DO UPDATE SET
			last_phase = excluded.last_phase,
			error_message = excluded.error_message,
			last_started_at = COALESCE(excluded.last_started_at, operation_state.last_started_at),
			last_finished_at = COALESCE(excluded.last_finished_at, operation_state.last_finished_at),
			updated_at = CURRENT_TIMESTAMP
	`, op, slice, phase, errVal, started, finished); err != nil {
		return fmt.Errorf("failed to update operation state: %w", err)
	}

	return tx.Commit()
}

// GetOperationState returns the state for op, or nil if it never ran.
func GetOperationState(db *sql.DB, op string) (*OperationState, error) {
	row := db.QueryRow(`
		SELECT op, slice, last_phase, error_message, last_started_at, last_finished_at, updated_at
		FROM operation_state
		WHERE op = ?
	`, op)

	state, err := scanState(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operation state: %w", err)
	}
	return state, nil
}

// GetAllOperationStates returns every operation's state ordered by name.
func GetAllOperationStates(db *sql.DB) ([]OperationState, error) {
	rows, err := db.Query(`
		SELECT op, slice, last_phase, error_message, last_started_at, last_finished_at, updated_at
		FROM operation_state
		ORDER BY op
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []OperationState
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation state: %w", err)
		}
		states = append(states, *state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation states: %w", err)
	}

	return states, nil
}

// RecentOperations returns up to limit log entries, newest first.
func RecentOperations(db *sql.DB, limit int) ([]OperationEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, op, slice, phase, error_message, occurred_at
		FROM operation_log
		ORDER BY occurred_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []OperationEvent
	for rows.Next() {
		var e OperationEvent
		var errMsg sql.NullString
		if err := rows.Scan(&e.ID, &e.Op, &e.Slice, &e.Phase, &errMsg, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation event: %w", err)
		}
		if errMsg.Valid {
			e.ErrorMessage = &errMsg.String
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation log: %w", err)
	}

	return events, nil
}

// PruneOperationLog keeps only the newest keep entries.
func PruneOperationLog(db *sql.DB, keep int) (int64, error) {
	res, err := db.Exec(`
		DELETE FROM operation_log
		WHERE id NOT IN (
			SELECT id FROM operation_log ORDER BY occurred_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune operation log: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanState(s scanner) (*OperationState, error) {
	var state OperationState
	var errMsg sql.NullString
	var started, finished sql.NullTime

	if err := s.Scan(&state.Op, &state.Slice, &state.LastPhase, &errMsg, &started, &finished, &state.UpdatedAt); err != nil {
		return nil, err
	}
	if errMsg.Valid {
		state.ErrorMessage = &errMsg.String
	}
	if started.Valid {
		state.LastStartedAt = &started.Time
	}
	if finished.Valid {
		state.LastFinishedAt = &finished.Time
	}
	return &state, nil
}
