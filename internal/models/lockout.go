package models

import "time"

// Lockout is one durable block event. At most one row exists per user within
// the rolling failed-attempt window; the repository enforces that with a
// conditional insert.
type Lockout struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}
