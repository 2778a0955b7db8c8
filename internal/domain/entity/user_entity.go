package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash; RefreshToken is the only refresh token
// currently accepted for this user (empty means none outstanding).
type User struct {
	ID           string
	Username     string
	Email        string
	Password     string
	RefreshToken string
	AvatarURL    string
	Confirmed    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRefreshToken reports whether a refresh token is outstanding.
func (u *User) HasRefreshToken() bool {
	return u.RefreshToken != ""
}
