// ABOUTME: Database schema for the operation journal
// ABOUTME: One row per store operation plus an append-only event log
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS operation_state (
	op TEXT PRIMARY KEY,
	slice TEXT NOT NULL,
	last_phase TEXT NOT NULL CHECK(last_phase IN ('pending', 'fulfilled', 'rejected', 'superseded', 'reset')),
	error_message TEXT,
	last_started_at DATETIME,
	last_finished_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS operation_log (
	id TEXT PRIMARY KEY,
	op TEXT NOT NULL,
	slice TEXT NOT NULL,
	phase TEXT NOT NULL,
	error_message TEXT,
	occurred_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_operation_log_op ON operation_log(op);
CREATE INDEX IF NOT EXISTS idx_operation_log_occurred ON operation_log(occurred_at DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
