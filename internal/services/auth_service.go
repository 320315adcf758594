package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"hue-chat/config"
	"hue-chat/internal/domain/user"
	"hue-chat/internal/repository"
	hue_errors "hue-chat/pkg/errors"

	"gorm.io/gorm"
)

// hexCodePattern is the canonical identity form: lowercase #rrggbb.
var hexCodePattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

type AuthService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	friendRepo  repository.FriendRepository
	messageRepo repository.MessageRepository
	typing      *TypingRegistry
	sessionTTL  time.Duration
	now         func() time.Time
}

func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, sessionRepo repository.SessionRepository, friendRepo repository.FriendRepository, messageRepo repository.MessageRepository, typing *TypingRegistry, cfg *config.Config) *AuthService {
	return &AuthService{
		db:          db,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		friendRepo:  friendRepo,
		messageRepo: messageRepo,
		typing:      typing,
		sessionTTL:  cfg.SessionTTL,
		now:         time.Now,
	}
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserHex   string    `json:"user_hex"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register creates a new identity and mints its first session. A duplicate
// identity is rejected outright; sign-up does not double as sign-in.
func (s *AuthService) Register(ctx context.Context, hexCode, password string) (AuthResponse, error) {
	hexCode = CanonicalHex(hexCode)
	if !hexCodePattern.MatchString(hexCode) || password == "" {
		return AuthResponse{}, hue_errors.ErrInvalidInput
	}

	newUser := &user.User{
		HexCode:      hexCode,
		PasswordHash: hashPassword(password),
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return AuthResponse{}, err
	}

	return s.mintSession(ctx, hexCode)
}

// Authenticate verifies the credential and mints a fresh session.
func (s *AuthService) Authenticate(ctx context.Context, hexCode, password string) (AuthResponse, error) {
	hexCode = CanonicalHex(hexCode)
	if hexCode == "" || password == "" {
		return AuthResponse{}, hue_errors.ErrInvalidInput
	}

	u, err := s.userRepo.GetByHex(ctx, hexCode)
	if err != nil {
		if errors.Is(err, hue_errors.ErrNotFound) {
			return AuthResponse{}, hue_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if !comparePassword(u.PasswordHash, password) {
		return AuthResponse{}, hue_errors.ErrUnauthorized
	}

	return s.mintSession(ctx, hexCode)
}

// ResolveSession is the sole authorization check for mutating operations.
// A live token slides its expiry forward, which doubles as the presence
// heartbeat: every authorized call renews it.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", hue_errors.ErrUnauthorized
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, hue_errors.ErrNotFound) {
			return "", hue_errors.ErrUnauthorized
		}
		return "", err
	}

	if !session.ExpiresAt.After(s.now()) {
		return "", hue_errors.ErrUnauthorized
	}

	if err := s.sessionRepo.UpdateExpiry(ctx, token, s.now().Add(s.sessionTTL)); err != nil {
		return "", err
	}

	return session.UserHex, nil
}

// SignOut deletes the session and clears the owner's typing mark.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return hue_errors.ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err == nil && s.typing != nil {
		s.typing.Clear(session.UserHex)
	}

	return s.sessionRepo.DeleteByToken(ctx, token)
}

// DeleteIdentity cascades: friend edges, requests, sessions and reactions
// are removed, messages are soft-deleted (the retention sweep purges them
// later), and the user row goes last.
func (s *AuthService) DeleteIdentity(ctx context.Context, hexCode string) error {
	if s.typing != nil {
		s.typing.Clear(hexCode)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		friendRepo := repository.NewFriendRepository(tx)
		sessionRepo := repository.NewSessionRepository(tx)
		messageRepo := repository.NewMessageRepository(tx)
		userRepo := repository.NewUserRepository(tx)

		if err := friendRepo.DeleteRequestsForUser(ctx, hexCode); err != nil {
			return err
		}
		if err := friendRepo.DeleteAllForUser(ctx, hexCode); err != nil {
			return err
		}
		if err := sessionRepo.DeleteByUser(ctx, hexCode); err != nil {
			return err
		}
		if err := messageRepo.DeleteReactionsByUser(ctx, hexCode); err != nil {
			return err
		}
		if err := messageRepo.SoftDeleteByAuthor(ctx, hexCode); err != nil {
			return err
		}
		return userRepo.Delete(ctx, hexCode)
	})
}

// AllUsers returns every registered identity in sign-up order.
func (s *AuthService) AllUsers(ctx context.Context) ([]string, error) {
	return s.userRepo.ListHexCodes(ctx)
}

func (s *AuthService) mintSession(ctx context.Context, hexCode string) (AuthResponse, error) {
	token, err := generateToken(32)
	if err != nil {
		return AuthResponse{}, err
	}

	now := s.now()
	session := &user.Session{
		Token:     token,
		UserHex:   hexCode,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		Token:     token,
		UserHex:   hexCode,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// CanonicalHex lowercases an identity so that #FF0000 and #ff0000 are the
// same user.
func CanonicalHex(hexCode string) string {
	return strings.ToLower(strings.TrimSpace(hexCode))
}

// hashPassword is a deterministic, salt-free digest so credentials can be
// matched by hash lookup. A hardened deployment should switch to a salted
// scheme and migrate stored hashes.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func comparePassword(hash, password string) bool {
	computed := hashPassword(password)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(computed)) == 1
}

func generateToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, hue_errors.ErrInvalidInput),
		errors.Is(err, hue_errors.ErrEmptyBody),
		errors.Is(err, hue_errors.ErrSelfRequest):
		return http.StatusBadRequest
	case errors.Is(err, hue_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, hue_errors.ErrForbidden),
		errors.Is(err, hue_errors.ErrWindowExpired):
		return http.StatusForbidden
	case errors.Is(err, hue_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, hue_errors.ErrAlreadyExists),
		errors.Is(err, hue_errors.ErrConflict),
		errors.Is(err, hue_errors.ErrAlreadyFriends),
		errors.Is(err, hue_errors.ErrAlreadyDeleted):
		return http.StatusConflict
	case errors.Is(err, hue_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, hue_errors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type ctxKey string

var userHexKey ctxKey = "user_hex"
var sessionTokenKey ctxKey = "session_token"

func WithUserSessionContext(ctx context.Context, userHex, token string) context.Context {
	ctx = context.WithValue(ctx, userHexKey, userHex)
	ctx = context.WithValue(ctx, sessionTokenKey, token)
	return ctx
}

func UserHexFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(userHexKey)
	if value == nil {
		return "", false
	}
	userHex, ok := value.(string)
	return userHex, ok
}

func SessionTokenFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionTokenKey)
	if value == nil {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}
