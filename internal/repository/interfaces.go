package repository

import (
	"context"
	"time"

	"hue-chat/internal/domain/friend"
	"hue-chat/internal/domain/message"
	"hue-chat/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByHex(ctx context.Context, hexCode string) (user.User, error)
	ListHexCodes(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, hexCode string) error
}

type SessionRepository interface {
	Create(ctx context.Context, s *user.Session) error
	GetByToken(ctx context.Context, token string) (user.Session, error)
	UpdateExpiry(ctx context.Context, token string, expiresAt time.Time) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userHex string) error

	// OnlineUsers returns distinct identities with a session expiring after now.
	OnlineUsers(ctx context.Context, now time.Time) ([]string, error)
	// ActiveUsers returns distinct identities with a session expiring after the
	// given threshold. Presence is derived purely from expiry timestamps.
	ActiveUsers(ctx context.Context, threshold time.Time) ([]string, error)
}

type FriendRepository interface {
	CreateRequest(ctx context.Context, r *friend.Request) error
	GetPendingRequest(ctx context.Context, id int64, toHex string) (friend.Request, error)
	GetRequest(ctx context.Context, id int64) (friend.Request, error)
	UpdateRequestStatus(ctx context.Context, id int64, status string) error
	PendingRequestsFor(ctx context.Context, toHex string) ([]friend.Request, error)
	DeleteRequestsForUser(ctx context.Context, userHex string) error

	CreateFriendship(ctx context.Context, f *friend.Friendship) error
	FriendshipExists(ctx context.Context, userHex, friendHex string) (bool, error)
	DeletePair(ctx context.Context, userHex, friendHex string) error
	SetNickname(ctx context.Context, ownerHex, friendHex, nickname string) error
	ListFriends(ctx context.Context, ownerHex string) ([]friend.Friendship, error)
	NicknameMap(ctx context.Context, ownerHex string) (map[string]string, error)
	DeleteAllForUser(ctx context.Context, userHex string) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id int64) (message.Message, error)
	SetBody(ctx context.Context, id int64, body string, editedAt time.Time) error
	SoftDelete(ctx context.Context, id int64) error
	SoftDeleteByAuthor(ctx context.Context, authorHex string) error
	ListFeed(ctx context.Context, limit int) ([]message.Message, error)
	Search(ctx context.Context, query string, extraAuthors []string, limit int) ([]message.Message, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	AddReaction(ctx context.Context, r *message.Reaction) error
	RemoveReaction(ctx context.Context, messageID int64, userHex, emoji string) error
	ReactionsForMessages(ctx context.Context, messageIDs []int64) ([]message.Reaction, error)
	DeleteReactionsByUser(ctx context.Context, userHex string) error
}
