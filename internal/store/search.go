package store

import (
	"context"
	"strings"

	"github.com/rcliao/ryan/internal/model"
)

// SearchParams holds parameters for searching memories.
type SearchParams struct {
	User     string
	Query    string
	Category string
	Limit    int
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search finds a user's entries whose key or value contains the query,
// case-insensitively for ASCII. Results are ordered by most recent update.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.Entry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(p.Query)) + "%"

	query := `SELECT id, user_id, key, value, category, created_at, updated_at
	          FROM memories
	          WHERE user_id = ? AND (key LIKE ? ESCAPE '\' OR value LIKE ? ESCAPE '\')`
	args := []interface{}{p.User, pattern, pattern}
	if p.Category != "" {
		query += ` AND category = ?`
		args = append(args, p.Category)
	}
	query += ` ORDER BY updated_at DESC, key LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}
