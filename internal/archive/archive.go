// Package archive keeps an append-only sqlite record of board events.
//
// The archive is auxiliary storage: the JSON state document stays the
// sole source of truth, and nothing on the board ever reads the archive
// back. It exists so task churn (transitions overwrite each other in the
// state file) remains queryable after the fact.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

// FileName is the fixed archive database name inside the project's
// .stigmergy directory.
const FileName = "archive.db"

// Transition is one recorded task status change.
type Transition struct {
	TaskID string
	From   models.TaskStatus
	To     models.TaskStatus
	Agent  models.AgentID
	At     time.Time
}

// Archive wraps the sqlite database.
type Archive struct {
	db *sql.DB
}

// Open opens or creates the archive database at the given path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS transitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL,
			from_status TEXT NOT NULL,
			to_status TEXT NOT NULL,
			agent TEXT,
			at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS log_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			agent TEXT,
			message TEXT NOT NULL,
			at DATETIME NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordTransition appends a task status change. Recording is
// best-effort: a failed insert is dropped rather than failing the
// board mutation that triggered it.
func (a *Archive) RecordTransition(taskID string, from, to models.TaskStatus, agent models.AgentID, at time.Time) {
	_, _ = a.db.Exec(
		`INSERT INTO transitions (task_id, from_status, to_status, agent, at) VALUES (?, ?, ?, ?, ?)`,
		taskID, string(from), string(to), string(agent), at,
	)
}

// RecordLog appends a collaboration log entry, best-effort.
func (a *Archive) RecordLog(entry models.LogEntry) {
	_, _ = a.db.Exec(
		`INSERT INTO log_entries (agent, message, at) VALUES (?, ?, ?)`,
		string(entry.Agent), entry.Message, entry.Timestamp,
	)
}

// RecentTransitions returns the newest transitions, newest first.
func (a *Archive) RecentTransitions(limit int) ([]Transition, error) {
	rows, err := a.db.Query(
		`SELECT task_id, from_status, to_status, agent, at FROM transitions ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var tr Transition
		var from, to, agent string
		if err := rows.Scan(&tr.TaskID, &from, &to, &agent, &tr.At); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		tr.From = models.TaskStatus(from)
		tr.To = models.TaskStatus(to)
		tr.Agent = models.AgentID(agent)
		out = append(out, tr)
	}
	return out, rows.Err()
}

// RecentLogs returns the newest archived log entries, newest first.
func (a *Archive) RecentLogs(limit int) ([]models.LogEntry, error) {
	rows, err := a.db.Query(
		`SELECT agent, message, at FROM log_entries ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}
	defer rows.Close()

	var out []models.LogEntry
	for rows.Next() {
		var e models.LogEntry
		var agent string
		if err := rows.Scan(&agent, &e.Message, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		e.Agent = models.AgentID(agent)
		out = append(out, e)
	}
	return out, rows.Err()
}
