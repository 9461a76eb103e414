package model

import "time"

// Product carries only the fields the notification subsystem reads. The rest
// of the product record belongs to the surrounding marketplace application.
type Product struct {
	ID                int64
	Name              string
	CalendarRelease   bool
	CalendarReleaseAt *time.Time
	PushNotified      bool
}
