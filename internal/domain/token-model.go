package domain

import "time"

// AccessToken is the server-side record behind a bearer token. The JWT's
// jti claim must match an existing row; deleting the row revokes exactly
// that token and leaves the user's other sessions alone.
type AccessToken struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
