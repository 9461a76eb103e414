package model

import "time"

// Log is the durable record of a dispatched notification. Immutable after
// creation except for the Seen flag and deletion.
type Log struct {
	ID          int64
	UserID      int64
	Name        string
	SubjectType string
	SubjectID   int64
	Action      string
	Payload     map[string]any
	Message     string
	Seen        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
