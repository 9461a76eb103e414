package model

import "time"

// Watch kinds.
const (
	WatchKindCalendar = "calendar"
	WatchKindPrice    = "price"
)

// Watch records a user's interest in a product's future state change.
type Watch struct {
	ID           int64
	UserID       int64
	ProductID    int64
	Kind         string
	PushNotified bool
	CreatedAt    time.Time
}
