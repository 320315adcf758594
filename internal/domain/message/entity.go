package message

import (
	"database/sql"
	"time"
)

// Message represents the messages table
type Message struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	AuthorHex string `gorm:"index"`
	Body      string
	CreatedAt time.Time `gorm:"index"`
	EditedAt  sql.NullTime
	IsDeleted bool
}

// Reaction represents the reactions table, unique per (message, user, emoji)
type Reaction struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	MessageID int64  `gorm:"uniqueIndex:idx_reactions_triple"`
	UserHex   string `gorm:"uniqueIndex:idx_reactions_triple"`
	Emoji     string `gorm:"uniqueIndex:idx_reactions_triple"`
	CreatedAt time.Time
}

// ReactionSummary is the per-emoji aggregate shown on a message view.
type ReactionSummary struct {
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// View is a message annotated for one viewer: the display name is the
// viewer's nickname for the author when one is set.
type View struct {
	ID          int64             `json:"id"`
	AuthorHex   string            `json:"author_hex"`
	DisplayName string            `json:"display_name"`
	Body        string            `json:"body"`
	CreatedAt   time.Time         `json:"created_at"`
	EditedAt    *time.Time        `json:"edited_at,omitempty"`
	Reactions   []ReactionSummary `json:"reactions"`
}

func (Message) TableName() string {
	return "messages"
}

func (Reaction) TableName() string {
	return "reactions"
}
