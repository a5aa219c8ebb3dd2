// Package storage provides the optional SQLite-backed decision log.
// The routing engine itself has no durability requirement; the decision log
// is an external collaborator that records classification outcomes for later
// inspection.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Decision is one recorded classification outcome.
type Decision struct {
	ID        string
	Model     string
	Label     string
	Target    string
	DecidedAt time.Time
}

// DecisionLog persists classification decisions to SQLite.
type DecisionLog struct {
	db *sql.DB
}

// OpenDecisionLog opens (creating if necessary) a decision log at the given
// SQLite path. The schema is applied idempotently.
func OpenDecisionLog(path string) (*DecisionLog, error) {
	if path == "" {
		return nil, fmt.Errorf("decision log path is empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open decision log: %w", err)
	}

	log := &DecisionLog{db: db}
	if err := log.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return log, nil
}

// NewDecisionLog wraps an existing database handle.
func NewDecisionLog(db *sql.DB) (*DecisionLog, error) {
	log := &DecisionLog{db: db}
	if err := log.migrate(); err != nil {
		return nil, err
	}
	return log, nil
}

// migrate applies the decision log schema.
func (l *DecisionLog) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS routing_decisions (
			id         TEXT PRIMARY KEY,
			model      TEXT NOT NULL,
			label      TEXT NOT NULL,
			target     TEXT NOT NULL,
			decided_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_routing_decisions_decided_at
			ON routing_decisions (decided_at);
	`
	if _, err := l.db.Exec(query); err != nil {
		return fmt.Errorf("failed to apply decision log schema: %w", err)
	}
	return nil
}

// Record persists one classification decision. A zero DecidedAt defaults to
// now; an empty ID is assigned a fresh UUID.
func (l *DecisionLog) Record(ctx context.Context, d Decision) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now()
	}

	query := `
		INSERT INTO routing_decisions (id, model, label, target, decided_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := l.db.ExecContext(ctx, query,
		d.ID,
		d.Model,
		d.Label,
		d.Target,
		d.DecidedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	return nil
}

// Recent returns the most recent decisions, newest first.
func (l *DecisionLog) Recent(ctx context.Context, limit int) ([]Decision, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, model, label, target, decided_at
		FROM routing_decisions
		ORDER BY decided_at DESC
		LIMIT ?
	`
	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var d Decision
		var decidedAt string
		if err := rows.Scan(&d.ID, &d.Model, &d.Label, &d.Target, &decidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, decidedAt); err == nil {
			d.DecidedAt = ts
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// CountByLabel returns the number of recorded decisions per label.
func (l *DecisionLog) CountByLabel(ctx context.Context) (map[string]int, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT label, COUNT(*) FROM routing_decisions GROUP BY label
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count decisions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

// Close closes the underlying database handle.
func (l *DecisionLog) Close() error {
	return l.db.Close()
}
