package services

import (
	"context"
	"time"

	"hue-chat/config"
	"hue-chat/internal/repository"
)

// PresenceService derives online and active user sets purely from session
// expiry timestamps. There is no heartbeat table: ResolveSession sliding a
// session to now+TTL is the heartbeat, so "refreshed within the active
// window" is equivalent to expires_at > now + TTL - window. A client that
// stops polling goes offline only when its sliding TTL lapses; that
// imprecision is a documented trade-off, not a bug.
type PresenceService struct {
	sessionRepo  repository.SessionRepository
	sessionTTL   time.Duration
	activeWindow time.Duration
	now          func() time.Time
}

func NewPresenceService(sessionRepo repository.SessionRepository, cfg *config.Config) *PresenceService {
	return &PresenceService{
		sessionRepo:  sessionRepo,
		sessionTTL:   cfg.SessionTTL,
		activeWindow: cfg.ActiveWindow,
		now:          time.Now,
	}
}

// OnlineUsers returns identities with at least one unexpired session.
func (s *PresenceService) OnlineUsers(ctx context.Context) ([]string, error) {
	return s.sessionRepo.OnlineUsers(ctx, s.now())
}

// ActiveUsers returns identities whose session was refreshed within the
// active window.
func (s *PresenceService) ActiveUsers(ctx context.Context) ([]string, error) {
	threshold := s.now().Add(s.sessionTTL).Add(-s.activeWindow)
	return s.sessionRepo.ActiveUsers(ctx, threshold)
}
