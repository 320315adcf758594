package friend

import (
	"time"
)

// Request status values
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Request represents the friend_requests table. Terminal rows (accepted or
// rejected) are kept as history.
type Request struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	FromHex   string `gorm:"uniqueIndex:idx_friend_requests_pair"`
	ToHex     string `gorm:"uniqueIndex:idx_friend_requests_pair;index"`
	Status    string
	CreatedAt time.Time
}

// Friendship represents one direction of a symmetric edge in the friends
// table. Both directions are always created and removed together; each side
// carries its own optional nickname for the other.
type Friendship struct {
	UserHex   string `gorm:"primaryKey;size:7"`
	FriendHex string `gorm:"primaryKey;size:7"`
	Nickname  string
	CreatedAt time.Time
}

func (Request) TableName() string {
	return "friend_requests"
}

func (Friendship) TableName() string {
	return "friends"
}
