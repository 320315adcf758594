package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"hue-chat/internal/domain/user"
	hue_errors "hue-chat/pkg/errors"

	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, u *user.User) error {
	res := r.db.WithContext(ctx).Create(u)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return hue_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *GormUserRepository) GetByHex(ctx context.Context, hexCode string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("hex_code = ?", hexCode).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, hue_errors.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *GormUserRepository) ListHexCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Order("created_at ASC").
		Pluck("hex_code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *GormUserRepository) Delete(ctx context.Context, hexCode string) error {
	res := r.db.WithContext(ctx).Delete(&user.User{}, "hex_code = ?", hexCode)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return hue_errors.ErrNotFound
	}
	return nil
}

type GormSessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, s *user.Session) error {
	res := r.db.WithContext(ctx).Create(s)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return hue_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *GormSessionRepository) GetByToken(ctx context.Context, token string) (user.Session, error) {
	var s user.Session
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.Session{}, hue_errors.ErrNotFound
		}
		return user.Session{}, err
	}
	return s, nil
}

func (r *GormSessionRepository) UpdateExpiry(ctx context.Context, token string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&user.Session{}).
		Where("token = ?", token).
		Update("expires_at", expiresAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return hue_errors.ErrNotFound
	}
	return nil
}

func (r *GormSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Delete(&user.Session{}, "token = ?", token).Error
}

func (r *GormSessionRepository) DeleteByUser(ctx context.Context, userHex string) error {
	return r.db.WithContext(ctx).
		Delete(&user.Session{}, "user_hex = ?", userHex).Error
}

func (r *GormSessionRepository) OnlineUsers(ctx context.Context, now time.Time) ([]string, error) {
	return r.distinctUsersExpiringAfter(ctx, now)
}

func (r *GormSessionRepository) ActiveUsers(ctx context.Context, threshold time.Time) ([]string, error) {
	return r.distinctUsersExpiringAfter(ctx, threshold)
}

func (r *GormSessionRepository) distinctUsersExpiringAfter(ctx context.Context, threshold time.Time) ([]string, error) {
	var users []string
	err := r.db.WithContext(ctx).
		Model(&user.Session{}).
		Distinct("user_hex").
		Where("expires_at > ?", threshold).
		Order("user_hex ASC").
		Pluck("user_hex", &users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// isDuplicateKey matches unique violations across the postgres and sqlite
// drivers, which gorm does not always translate to ErrDuplicatedKey.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
