// Package model defines the core memory and response data types.
package model

import "time"

// DefaultCategory is used when a memory is saved without a category.
const DefaultCategory = "general"

// Entry represents one stored memory for a user.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	Timestamp time.Time `json:"timestamp"`
}
