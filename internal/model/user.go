package model

import "time"

type User struct {
	ID        int64
	Email     string
	Name      string
	PushToken *string
	CreatedAt time.Time
}

// HasPushToken reports whether the user has a registered device token.
func (u *User) HasPushToken() bool {
	return u.PushToken != nil && *u.PushToken != ""
}
