package entity

import (
	"time"
)

// MinutesVersion is one generated (or user-edited) minutes document.
// Versions are append-only; the latest one compresses prompt history for
// subsequent turns.
type MinutesVersion struct {
	// ID is the unique minutes identifier.
	ID string `json:"id"`

	// Version is 1-origin and strictly increasing per meeting.
	Version int `json:"version"`

	// Content is the full minutes text fed into later prompt context.
	Content string `json:"content"`

	// Summary is the short conclusion shown in meeting context.
	Summary string `json:"summary"`

	// KeyDecisions are the decisions extracted from the discussion.
	KeyDecisions []string `json:"key_decisions,omitempty"`

	// ActionItems are the follow-ups extracted from the discussion.
	ActionItems []string `json:"action_items,omitempty"`

	// CreatedAt orders versions; later versions never predate earlier ones.
	CreatedAt time.Time `json:"created_at"`

	// CreatedBy is "user" or the generating participant's ID.
	CreatedBy string `json:"created_by"`
}
