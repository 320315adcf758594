package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"hue-chat/internal/domain/message"
	hue_errors "hue-chat/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, m *message.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *GormMessageRepository) GetByID(ctx context.Context, id int64) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, hue_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *GormMessageRepository) SetBody(ctx context.Context, id int64, body string, editedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"body":      body,
			"edited_at": editedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return hue_errors.ErrNotFound
	}
	return nil
}

func (r *GormMessageRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ?", id).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return hue_errors.ErrNotFound
	}
	return nil
}

func (r *GormMessageRepository) SoftDeleteByAuthor(ctx context.Context, authorHex string) error {
	return r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("author_hex = ?", authorHex).
		Update("is_deleted", true).Error
}

func (r *GormMessageRepository) ListFeed(ctx context.Context, limit int) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Search matches non-deleted messages whose body or author contains the
// query, case-insensitively, or whose author is in extraAuthors (authors the
// viewer knows by a matching nickname). Most recent first.
func (r *GormMessageRepository) Search(ctx context.Context, query string, extraAuthors []string, limit int) ([]message.Message, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	q := r.db.WithContext(ctx).
		Where("is_deleted = ?", false)
	if len(extraAuthors) > 0 {
		q = q.Where("LOWER(body) LIKE ? OR LOWER(author_hex) LIKE ? OR author_hex IN ?",
			pattern, pattern, extraAuthors)
	} else {
		q = q.Where("LOWER(body) LIKE ? OR LOWER(author_hex) LIKE ?", pattern, pattern)
	}

	var messages []message.Message
	err := q.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteOlderThan hard-deletes messages created before the cutoff along with
// their reactions, and prunes reactions orphaned by any earlier removal.
func (r *GormMessageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Delete(&message.Message{}, "created_at < ?", cutoff)
	if res.Error != nil {
		return 0, res.Error
	}

	err := r.db.WithContext(ctx).
		Delete(&message.Reaction{}, "message_id NOT IN (?)",
			r.db.Model(&message.Message{}).Select("id")).Error
	if err != nil {
		return res.RowsAffected, err
	}
	return res.RowsAffected, nil
}

// AddReaction inserts the (message, user, emoji) triple, ignoring a
// duplicate so that reacting twice leaves exactly one row.
func (r *GormMessageRepository) AddReaction(ctx context.Context, reaction *message.Reaction) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reaction).Error
}

// RemoveReaction deletes the triple; removing an absent reaction is a no-op.
func (r *GormMessageRepository) RemoveReaction(ctx context.Context, messageID int64, userHex, emoji string) error {
	return r.db.WithContext(ctx).
		Delete(&message.Reaction{},
			"message_id = ? AND user_hex = ? AND emoji = ?", messageID, userHex, emoji).Error
}

func (r *GormMessageRepository) ReactionsForMessages(ctx context.Context, messageIDs []int64) ([]message.Reaction, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var reactions []message.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", messageIDs).
		Order("created_at ASC, id ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	return reactions, nil
}

func (r *GormMessageRepository) DeleteReactionsByUser(ctx context.Context, userHex string) error {
	return r.db.WithContext(ctx).
		Delete(&message.Reaction{}, "user_hex = ?", userHex).Error
}
