package store

import (
	"context"

	"github.com/rcliao/ryan/internal/model"
)

// ExportAll returns all entries, optionally filtered by user.
func (s *SQLiteStore) ExportAll(ctx context.Context, user string) ([]model.Entry, error) {
	query := `SELECT id, user_id, key, value, category, created_at, updated_at FROM memories`
	args := []interface{}{}
	if user != "" {
		query += ` WHERE user_id = ?`
		args = append(args, user)
	}
	query += ` ORDER BY user_id, key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Import stores entries from an export. Existing keys are overwritten.
// Entries without a user are assigned to defaultUser.
func (s *SQLiteStore) Import(ctx context.Context, entries []model.Entry, defaultUser string) (int, error) {
	imported := 0
	for _, e := range entries {
		user := e.UserID
		if user == "" {
			user = defaultUser
		}
		_, err := s.Put(ctx, PutParams{
			User:     user,
			Key:      e.Key,
			Value:    e.Value,
			Category: e.Category,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
