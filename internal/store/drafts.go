package store

import (
	"context"
	"fmt"
)

// SaveDraft upserts the user's form draft. Only the draft columns are
// written, so usage accounting fields on the same row are never clobbered.
// Concurrent saves from the same user race last-write-wins; that is accepted
// behaviour for a single-author draft.
func (s *Store) SaveDraft(ctx context.Context, userID string, formData map[string]string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, form_data, form_last_updated)
		VALUES ($1, $2, now())
		ON CONFLICT (id)
		DO UPDATE SET
			form_data = $2,
			form_last_updated = now()`,
		userID, formData,
	)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the user's most recent draft, or ErrNotFound when the
// user has no row or has never saved one.
func (s *Store) LoadDraft(ctx context.Context, userID string) (map[string]string, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT form_data
		FROM users
		WHERE id = $1 AND form_data IS NOT NULL`,
		userID,
	)

	var formData map[string]string
	if err := row.Scan(&formData); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return formData, nil
}
