package services

import (
	"context"

	"hue-chat/internal/domain/message"
)

// SyncService is the combined read collaborators poll each cycle. The
// sub-reads are taken back-to-back within one request; eventual convergence
// within a polling interval is the contract, not snapshot isolation.
type SyncService struct {
	messages *MessageService
	presence *PresenceService
	typing   *TypingRegistry
}

func NewSyncService(messages *MessageService, presence *PresenceService, typing *TypingRegistry) *SyncService {
	return &SyncService{
		messages: messages,
		presence: presence,
		typing:   typing,
	}
}

type SyncSnapshot struct {
	Messages    []message.View `json:"messages"`
	OnlineUsers []string       `json:"online_users"`
	ActiveUsers []string       `json:"active_users"`
	TypingUsers []string       `json:"typing_users"`
}

// Poll shapes the feed plus presence and typing state for one viewer.
func (s *SyncService) Poll(ctx context.Context, viewerHex string) (SyncSnapshot, error) {
	feed, err := s.messages.Feed(ctx, viewerHex)
	if err != nil {
		return SyncSnapshot{}, err
	}

	online, err := s.presence.OnlineUsers(ctx)
	if err != nil {
		return SyncSnapshot{}, err
	}

	active, err := s.presence.ActiveUsers(ctx)
	if err != nil {
		return SyncSnapshot{}, err
	}

	return SyncSnapshot{
		Messages:    feed,
		OnlineUsers: online,
		ActiveUsers: active,
		TypingUsers: s.typing.Typing(),
	}, nil
}
