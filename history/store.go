// Package history persists per-user question/answer turns. Three
// backends are available: a JSON file for single-node deployments,
// Redis lists for shared state, and SQLite for queryable local storage.
package history

import (
	"context"
	"time"
)

// Turn is one question/answer exchange.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at,omitempty"`
}

// Store is the append-only interaction log. Append failures must never
// reach the user-visible response path; callers log and continue.
type Store interface {
	// Append records a completed turn for the user.
	Append(ctx context.Context, userID string, turn Turn) error

	// History returns the user's turns, oldest first. Unknown users
	// get an empty slice.
	History(ctx context.Context, userID string) ([]Turn, error)

	// Clear removes all turns for the user.
	Clear(ctx context.Context, userID string) error
}
