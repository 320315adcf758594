package repository

import (
	"context"
	"errors"

	"hue-chat/internal/domain/friend"
	hue_errors "hue-chat/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormFriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &GormFriendRepository{db: db}
}

// CreateRequest inserts a request, silently ignoring a duplicate for the
// same ordered (from, to) pair.
func (r *GormFriendRepository) CreateRequest(ctx context.Context, req *friend.Request) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(req).Error
}

func (r *GormFriendRepository) GetPendingRequest(ctx context.Context, id int64, toHex string) (friend.Request, error) {
	var req friend.Request
	err := r.db.WithContext(ctx).
		Where("id = ? AND to_hex = ? AND status = ?", id, toHex, friend.StatusPending).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return friend.Request{}, hue_errors.ErrNotFound
		}
		return friend.Request{}, err
	}
	return req, nil
}

func (r *GormFriendRepository) GetRequest(ctx context.Context, id int64) (friend.Request, error) {
	var req friend.Request
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return friend.Request{}, hue_errors.ErrNotFound
		}
		return friend.Request{}, err
	}
	return req, nil
}

func (r *GormFriendRepository) UpdateRequestStatus(ctx context.Context, id int64, status string) error {
	res := r.db.WithContext(ctx).
		Model(&friend.Request{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return hue_errors.ErrNotFound
	}
	return nil
}

func (r *GormFriendRepository) PendingRequestsFor(ctx context.Context, toHex string) ([]friend.Request, error) {
	var requests []friend.Request
	err := r.db.WithContext(ctx).
		Where("to_hex = ? AND status = ?", toHex, friend.StatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *GormFriendRepository) DeleteRequestsForUser(ctx context.Context, userHex string) error {
	return r.db.WithContext(ctx).
		Delete(&friend.Request{}, "from_hex = ? OR to_hex = ?", userHex, userHex).Error
}

// CreateFriendship inserts one direction of an edge, ignoring duplicates so
// that re-running an accept stays idempotent.
func (r *GormFriendRepository) CreateFriendship(ctx context.Context, f *friend.Friendship) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(f).Error
}

func (r *GormFriendRepository) FriendshipExists(ctx context.Context, userHex, friendHex string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&friend.Friendship{}).
		Where("user_hex = ? AND friend_hex = ?", userHex, friendHex).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeletePair removes both directions of the edge. Removing a friendship that
// does not exist is a no-op.
func (r *GormFriendRepository) DeletePair(ctx context.Context, userHex, friendHex string) error {
	return r.db.WithContext(ctx).
		Delete(&friend.Friendship{},
			"(user_hex = ? AND friend_hex = ?) OR (user_hex = ? AND friend_hex = ?)",
			userHex, friendHex, friendHex, userHex).Error
}

func (r *GormFriendRepository) SetNickname(ctx context.Context, ownerHex, friendHex, nickname string) error {
	res := r.db.WithContext(ctx).
		Model(&friend.Friendship{}).
		Where("user_hex = ? AND friend_hex = ?", ownerHex, friendHex).
		Update("nickname", nickname)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return hue_errors.ErrNotFound
	}
	return nil
}

func (r *GormFriendRepository) ListFriends(ctx context.Context, ownerHex string) ([]friend.Friendship, error) {
	var friends []friend.Friendship
	err := r.db.WithContext(ctx).
		Where("user_hex = ?", ownerHex).
		Order("nickname ASC, friend_hex ASC").
		Find(&friends).Error
	if err != nil {
		return nil, err
	}
	return friends, nil
}

func (r *GormFriendRepository) NicknameMap(ctx context.Context, ownerHex string) (map[string]string, error) {
	var friends []friend.Friendship
	err := r.db.WithContext(ctx).
		Where("user_hex = ? AND nickname <> ''", ownerHex).
		Find(&friends).Error
	if err != nil {
		return nil, err
	}
	nicknames := make(map[string]string, len(friends))
	for _, f := range friends {
		nicknames[f.FriendHex] = f.Nickname
	}
	return nicknames, nil
}

func (r *GormFriendRepository) DeleteAllForUser(ctx context.Context, userHex string) error {
	return r.db.WithContext(ctx).
		Delete(&friend.Friendship{}, "user_hex = ? OR friend_hex = ?", userHex, userHex).Error
}
