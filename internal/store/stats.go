package store

import (
	"context"
	"os"
	"time"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string      `json:"db_path"`
	DBSizeBytes  int64       `json:"db_size_bytes"`
	TotalEntries int         `json:"total_entries"`
	Users        []UserStats `json:"users"`
}

// UserStats holds per-user counts.
type UserStats struct {
	User        string    `json:"user"`
	Count       int       `json:"count"`
	Categories  int       `json:"categories"`
	LastUpdated time.Time `json:"last_updated"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Users: []UserStats{}}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&st.TotalEntries); err != nil {
		return st, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, COUNT(*) AS cnt, COUNT(DISTINCT category), MAX(updated_at)
		FROM memories
		GROUP BY user_id ORDER BY cnt DESC, user_id`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var us UserStats
		var last string
		if err := rows.Scan(&us.User, &us.Count, &us.Categories, &last); err != nil {
			return st, err
		}
		us.LastUpdated, _ = time.Parse(time.RFC3339Nano, last)
		st.Users = append(st.Users, us)
	}
	return st, rows.Err()
}
