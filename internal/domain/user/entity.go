package user

import (
	"time"
)

// User represents the users table. The hex color code doubles as the
// username and the display color.
type User struct {
	HexCode      string `gorm:"primaryKey;size:7"`
	PasswordHash string
	CreatedAt    time.Time
}

// Session represents the sessions table. The expiry timestamp is also the
// presence signal: ResolveSession slides it forward on every authorized
// call, and sign-out removes the row.
type Session struct {
	Token     string `gorm:"primaryKey;size:64"`
	UserHex   string `gorm:"index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

func (Session) TableName() string {
	return "sessions"
}
