package services

import (
	"context"
	"testing"
	"time"

	"hue-chat/internal/domain/message"
	"hue-chat/internal/repository"
	hue_errors "hue-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthFixture(t *testing.T) (*AuthService, *TypingRegistry, *gorm.DB, *testClock) {
	t.Helper()
	db := newTestDB(t)
	clock := newTestClock()
	typing := NewTypingRegistry(5*time.Second, clock.Now)

	svc := NewAuthService(
		db,
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		repository.NewFriendRepository(db),
		repository.NewMessageRepository(db),
		typing,
		newTestConfig(),
	)
	svc.now = clock.Now
	return svc, typing, db, clock
}

func TestRegisterCanonicalizesAndMintsSession(t *testing.T) {
	svc, _, _, clock := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "  #FF0000 ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", res.UserHex)
	assert.Len(t, res.Token, 64)
	assert.Equal(t, clock.Now().Add(30*24*time.Hour), res.ExpiresAt)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		hexCode  string
		password string
	}{
		{"missing hash", "ff0000", "secret"},
		{"too short", "#fff", "secret"},
		{"non hex digits", "#zzzzzz", "secret"},
		{"empty password", "#ff0000", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.hexCode, tc.password)
			assert.ErrorIs(t, err, hue_errors.ErrInvalidInput)
		})
	}
}

func TestRegisterRejectsDuplicateIdentity(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "#ff0000", "secret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "#FF0000", "other")
	assert.ErrorIs(t, err, hue_errors.ErrAlreadyExists)
}

func TestAuthenticate(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "#ff0000", "secret")
	require.NoError(t, err)

	res, err := svc.Authenticate(ctx, "#FF0000", "secret")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", res.UserHex)

	_, err = svc.Authenticate(ctx, "#ff0000", "wrong")
	assert.ErrorIs(t, err, hue_errors.ErrUnauthorized)

	// Unknown identity looks exactly like a bad password.
	_, err = svc.Authenticate(ctx, "#0000ff", "secret")
	assert.ErrorIs(t, err, hue_errors.ErrUnauthorized)
}

func TestResolveSessionSlidesExpiry(t *testing.T) {
	svc, _, db, clock := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "#ff0000", "secret")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	userHex, err := svc.ResolveSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", userHex)

	session, err := repository.NewSessionRepository(db).GetByToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(30*24*time.Hour).Unix(), session.ExpiresAt.Unix())
}

func TestResolveSessionExpired(t *testing.T) {
	svc, _, _, clock := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "#ff0000", "secret")
	require.NoError(t, err)

	clock.Advance(31 * 24 * time.Hour)
	_, err = svc.ResolveSession(ctx, res.Token)
	assert.ErrorIs(t, err, hue_errors.ErrUnauthorized)

	_, err = svc.ResolveSession(ctx, "no-such-token")
	assert.ErrorIs(t, err, hue_errors.ErrUnauthorized)

	_, err = svc.ResolveSession(ctx, "")
	assert.ErrorIs(t, err, hue_errors.ErrUnauthorized)
}

func TestSignOutDeletesSessionAndClearsTyping(t *testing.T) {
	svc, typing, _, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "#ff0000", "secret")
	require.NoError(t, err)

	typing.Mark("#ff0000")
	require.NoError(t, svc.SignOut(ctx, res.Token))

	assert.Empty(t, typing.Typing())
	_, err = svc.ResolveSession(ctx, res.Token)
	assert.ErrorIs(t, err, hue_errors.ErrUnauthorized)
}

func TestDeleteIdentityCascades(t *testing.T) {
	svc, typing, db, clock := newAuthFixture(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, "#ff0000", "secret")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "#00ff00", "secret")
	require.NoError(t, err)

	friendSvc := NewFriendService(db, repository.NewFriendRepository(db), repository.NewUserRepository(db))
	require.NoError(t, friendSvc.SendRequest(ctx, "#ff0000", "#00ff00"))
	pending, err := friendSvc.PendingRequests(ctx, "#00ff00")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, friendSvc.Accept(ctx, pending[0].ID, "#00ff00"))

	msgSvc := NewMessageService(repository.NewMessageRepository(db), repository.NewFriendRepository(db), typing, nil, newTestConfig())
	msgSvc.now = clock.Now
	msgID, err := msgSvc.Post(ctx, "#ff0000", "hello")
	require.NoError(t, err)
	require.NoError(t, msgSvc.React(ctx, msgID, "#ff0000", "👍"))

	typing.Mark("#ff0000")
	require.NoError(t, svc.DeleteIdentity(ctx, "#ff0000"))

	assert.Empty(t, typing.Typing())

	users, err := svc.AllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#00ff00"}, users)

	_, err = svc.ResolveSession(ctx, alice.Token)
	assert.ErrorIs(t, err, hue_errors.ErrUnauthorized)

	friends, err := friendSvc.ListFriends(ctx, "#00ff00")
	require.NoError(t, err)
	assert.Empty(t, friends)

	// Messages are soft-deleted, not purged; the sweep handles the rest.
	msg, err := repository.NewMessageRepository(db).GetByID(ctx, msgID)
	require.NoError(t, err)
	assert.True(t, msg.IsDeleted)

	var reactionCount int64
	require.NoError(t, db.Model(&message.Reaction{}).Count(&reactionCount).Error)
	assert.Zero(t, reactionCount)
}

func TestAllUsersInSignupOrder(t *testing.T) {
	svc, _, _, clock := newAuthFixture(t)
	ctx := context.Background()

	for _, hex := range []string{"#ff0000", "#00ff00", "#0000ff"} {
		_, err := svc.Register(ctx, hex, "secret")
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	users, err := svc.AllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#ff0000", "#00ff00", "#0000ff"}, users)
}
