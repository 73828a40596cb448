package entity

import "time"

// ScheduledTimeout - a pending turn expiration for a session.
// It is never cancelled: a newer turn makes it stale instead.
type ScheduledTimeout struct {
	ID        uint64    `json:"id"`
	DueAt     time.Time `json:"due_at"`
	SessionID string    `json:"session_id"`
	Turn      uint32    `json:"turn"`
}
