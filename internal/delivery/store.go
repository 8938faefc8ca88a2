// Package delivery records outbound message delivery attempts so operators
// can audit what was sent where, and how many tries it took.
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hoststack/concierge/internal/db"
)

// Outcome labels how one attempt ended.
type Outcome string

const (
	OutcomeSent   Outcome = "sent"
	OutcomeRetry  Outcome = "retry"
	OutcomeFailed Outcome = "failed"
)

// Attempt is one recorded delivery try.
type Attempt struct {
	ID        string
	Channel   string
	Recipient string
	Attempt   int
	Outcome   Outcome
	Error     string
	CreatedAt time.Time
}

// Store persists delivery attempts.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record writes one attempt. errMsg may be empty for successful attempts.
func (s *Store) Record(ctx context.Context, channel, recipient string, attempt int, outcome Outcome, errMsg string) error {
	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO delivery_attempts (id, channel, recipient, attempt, outcome, error) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), channel, recipient, attempt, string(outcome), errMsg)
	if err != nil {
		return fmt.Errorf("recording delivery attempt: %w", err)
	}
	return nil
}

// Recent returns the most recent attempts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, channel, recipient, attempt, outcome, error, created_at
		 FROM delivery_attempts ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying delivery attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var outcome string
		if err := rows.Scan(&a.ID, &a.Channel, &a.Recipient, &a.Attempt, &outcome, &a.Error, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning delivery attempt: %w", err)
		}
		a.Outcome = Outcome(outcome)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// CountByOutcome returns how many attempts ended with the given outcome for a
// channel. A blank channel counts across all channels.
func (s *Store) CountByOutcome(ctx context.Context, channel string, outcome Outcome) (int, error) {
	var n int
	var err error
	if channel == "" {
		err = s.db.Conn().QueryRowContext(ctx,
			`SELECT COUNT(*) FROM delivery_attempts WHERE outcome = ?`, string(outcome)).Scan(&n)
	} else {
		err = s.db.Conn().QueryRowContext(ctx,
			`SELECT COUNT(*) FROM delivery_attempts WHERE channel = ? AND outcome = ?`, channel, string(outcome)).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("counting delivery attempts: %w", err)
	}
	return n, nil
}
