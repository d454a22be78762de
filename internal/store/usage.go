package store

import (
	"context"
	"fmt"
	"time"
)

type UsageRecord struct {
	UserID     string
	Email      string
	UsageCount int
	LastUsed   time.Time
}

// RecordUsage bumps the per-user generation counter, creating the record on
// first use. The increment happens in the database so concurrent requests
// never lose a count.
func (s *Store) RecordUsage(ctx context.Context, userID, email string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, usage_count, last_used)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (id)
		DO UPDATE SET
			email = $2,
			usage_count = coalesce(users.usage_count, 0) + 1,
			last_used = now()`,
		userID, email,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// GetUsage fetches the usage record for a user, or ErrNotFound.
func (s *Store) GetUsage(ctx context.Context, userID string) (*UsageRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, coalesce(email, ''), coalesce(usage_count, 0), coalesce(last_used, to_timestamp(0))
		FROM users
		WHERE id = $1`,
		userID,
	)

	var rec UsageRecord
	if err := row.Scan(&rec.UserID, &rec.Email, &rec.UsageCount, &rec.LastUsed); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get usage: %w", err)
	}
	return &rec, nil
}
