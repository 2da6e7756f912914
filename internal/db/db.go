// Package db provides PostgreSQL persistence for optimization runs and
// assistant conversation history. The server runs fine without it; a
// missing DATABASE_URL just disables persistence.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Message is one persisted conversation message.
type Message struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
}

// SaveMessage appends one message to a session's history.
func (db *DB) SaveMessage(ctx context.Context, sessionID, role, content string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO session_messages (session_id, role, content)
		 VALUES ($1, $2, $3)`,
		sessionID, role, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// GetMessages returns a session's history oldest-first, capped at limit
// (0 means no cap).
func (db *DB) GetMessages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	query := `SELECT id, session_id, role, content
	          FROM session_messages
	          WHERE session_id = $1
	          ORDER BY created_at ASC`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return messages, nil
}

// ClearSession deletes a session's persisted history and run records.
func (db *DB) ClearSession(ctx context.Context, sessionID string) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM session_messages WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear session messages: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`DELETE FROM optimization_runs WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear session runs: %w", err)
	}
	return nil
}

// SaveRun records a completed optimization run.
func (db *DB) SaveRun(ctx context.Context, sessionID, status string, matchPercentage float64) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO optimization_runs (session_id, status, match_percentage)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		sessionID, status, matchPercentage,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

// GetRun returns one optimization run, or nil when it does not exist.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_id, status, match_percentage
		 FROM optimization_runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.SessionID, &run.Status, &run.MatchPercentage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// Run is one persisted optimization run record.
type Run struct {
	ID              uuid.UUID `json:"id"`
	SessionID       string    `json:"session_id"`
	Status          string    `json:"status"`
	MatchPercentage float64   `json:"match_percentage"`
}
