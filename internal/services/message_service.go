package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"hue-chat/config"
	"hue-chat/internal/domain/message"
	"hue-chat/internal/repository"
	hue_errors "hue-chat/pkg/errors"

	"hue-chat/pkg/logger"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	friendRepo  repository.FriendRepository
	typing      *TypingRegistry
	log         *logger.Logger

	editWindow       time.Duration
	retentionHorizon time.Duration
	sweepInterval    time.Duration
	feedLimit        int
	searchLimit      int
	now              func() time.Time

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func NewMessageService(messageRepo repository.MessageRepository, friendRepo repository.FriendRepository, typing *TypingRegistry, log *logger.Logger, cfg *config.Config) *MessageService {
	return &MessageService{
		messageRepo:      messageRepo,
		friendRepo:       friendRepo,
		typing:           typing,
		log:              log,
		editWindow:       cfg.EditWindow,
		retentionHorizon: cfg.RetentionHorizon,
		sweepInterval:    cfg.SweepInterval,
		feedLimit:        cfg.FeedLimit,
		searchLimit:      cfg.SearchLimit,
		now:              time.Now,
	}
}

// Post appends a message and clears the author's typing mark.
func (s *MessageService) Post(ctx context.Context, authorHex, body string) (int64, error) {
	if strings.TrimSpace(body) == "" {
		return 0, hue_errors.ErrEmptyBody
	}

	msg := &message.Message{
		AuthorHex: authorHex,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return 0, err
	}

	if s.typing != nil {
		s.typing.Clear(authorHex)
	}
	return msg.ID, nil
}

// Edit replaces the body within the edit window. The window is anchored at
// created_at for every edit; editing does not extend it.
func (s *MessageService) Edit(ctx context.Context, id int64, authorHex, newBody string) error {
	if strings.TrimSpace(newBody) == "" {
		return hue_errors.ErrEmptyBody
	}

	if err := s.checkOwnershipAndWindow(ctx, id, authorHex); err != nil {
		return err
	}
	return s.messageRepo.SetBody(ctx, id, newBody, s.now())
}

// Delete soft-deletes a message under the same ownership and window rules
// as Edit. Reactions and the row persist until the retention sweep.
func (s *MessageService) Delete(ctx context.Context, id int64, authorHex string) error {
	if err := s.checkOwnershipAndWindow(ctx, id, authorHex); err != nil {
		return err
	}
	return s.messageRepo.SoftDelete(ctx, id)
}

func (s *MessageService) checkOwnershipAndWindow(ctx context.Context, id int64, authorHex string) error {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.AuthorHex != authorHex {
		return hue_errors.ErrForbidden
	}
	if msg.IsDeleted {
		return hue_errors.ErrAlreadyDeleted
	}
	if s.now().Sub(msg.CreatedAt) > s.editWindow {
		return hue_errors.ErrWindowExpired
	}
	return nil
}

// React attaches an emoji to a message. A duplicate (message, user, emoji)
// triple is a silent no-op.
func (s *MessageService) React(ctx context.Context, messageID int64, userHex, emoji string) error {
	if emoji == "" {
		return hue_errors.ErrInvalidInput
	}
	if _, err := s.messageRepo.GetByID(ctx, messageID); err != nil {
		return err
	}
	return s.messageRepo.AddReaction(ctx, &message.Reaction{
		MessageID: messageID,
		UserHex:   userHex,
		Emoji:     emoji,
		CreatedAt: s.now(),
	})
}

// Unreact removes the triple; removing an absent reaction succeeds.
func (s *MessageService) Unreact(ctx context.Context, messageID int64, userHex, emoji string) error {
	return s.messageRepo.RemoveReaction(ctx, messageID, userHex, emoji)
}

// Feed returns non-deleted messages oldest-first, annotated for the viewer:
// display names resolve through the viewer's nicknames and reactions are
// aggregated per emoji. Feed reads also trigger the throttled retention
// sweep.
func (s *MessageService) Feed(ctx context.Context, viewerHex string) ([]message.View, error) {
	s.maybeSweep(ctx)

	messages, err := s.messageRepo.ListFeed(ctx, s.feedLimit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, messages, viewerHex)
}

// Search matches body, author identity or the viewer's nickname for the
// author, case-insensitively, most recent first.
func (s *MessageService) Search(ctx context.Context, query, viewerHex string) ([]message.View, error) {
	if strings.TrimSpace(query) == "" {
		return []message.View{}, nil
	}

	nicknames, err := s.friendRepo.NicknameMap(ctx, viewerHex)
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(query)
	var nicknameAuthors []string
	for friendHex, nickname := range nicknames {
		if strings.Contains(strings.ToLower(nickname), lowered) {
			nicknameAuthors = append(nicknameAuthors, friendHex)
		}
	}

	messages, err := s.messageRepo.Search(ctx, query, nicknameAuthors, s.searchLimit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, messages, viewerHex)
}

// Sweep hard-deletes messages older than the retention horizon together
// with their reactions. Safe to call concurrently or redundantly.
func (s *MessageService) Sweep(ctx context.Context) (int64, error) {
	return s.messageRepo.DeleteOlderThan(ctx, s.now().Add(-s.retentionHorizon))
}

// maybeSweep runs the retention sweep at most once per sweep interval. The
// horizon (days) dwarfs the edit window (a minute), so the sweep never races
// the window checks.
func (s *MessageService) maybeSweep(ctx context.Context) {
	s.sweepMu.Lock()
	if s.now().Sub(s.lastSweep) < s.sweepInterval {
		s.sweepMu.Unlock()
		return
	}
	s.lastSweep = s.now()
	s.sweepMu.Unlock()

	purged, err := s.Sweep(ctx)
	if err != nil {
		if s.log != nil {
			s.log.Errorf("retention sweep failed: %v", err)
		}
		return
	}
	if purged > 0 && s.log != nil {
		s.log.Infof("retention sweep removed %d messages", purged)
	}
}

// annotate shapes raw rows into viewer-specific views: nickname resolution
// from the viewer's side of the friend graph, plus per-emoji reaction
// summaries with reactor lists in reaction order.
func (s *MessageService) annotate(ctx context.Context, messages []message.Message, viewerHex string) ([]message.View, error) {
	nicknames, err := s.friendRepo.NicknameMap(ctx, viewerHex)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}

	reactions, err := s.messageRepo.ReactionsForMessages(ctx, ids)
	if err != nil {
		return nil, err
	}

	type emojiKey struct {
		messageID int64
		emoji     string
	}
	summaries := make(map[int64][]message.ReactionSummary)
	index := make(map[emojiKey]int)
	for _, r := range reactions {
		key := emojiKey{r.MessageID, r.Emoji}
		if at, ok := index[key]; ok {
			summaries[r.MessageID][at].Count++
			summaries[r.MessageID][at].Users = append(summaries[r.MessageID][at].Users, r.UserHex)
			continue
		}
		index[key] = len(summaries[r.MessageID])
		summaries[r.MessageID] = append(summaries[r.MessageID], message.ReactionSummary{
			Emoji: r.Emoji,
			Count: 1,
			Users: []string{r.UserHex},
		})
	}

	views := make([]message.View, 0, len(messages))
	for _, m := range messages {
		displayName := m.AuthorHex
		if nickname, ok := nicknames[m.AuthorHex]; ok {
			displayName = nickname
		}

		view := message.View{
			ID:          m.ID,
			AuthorHex:   m.AuthorHex,
			DisplayName: displayName,
			Body:        m.Body,
			CreatedAt:   m.CreatedAt,
			Reactions:   summaries[m.ID],
		}
		if view.Reactions == nil {
			view.Reactions = []message.ReactionSummary{}
		}
		if m.EditedAt.Valid {
			editedAt := m.EditedAt.Time
			view.EditedAt = &editedAt
		}
		views = append(views, view)
	}
	return views, nil
}
