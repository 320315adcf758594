package services

import (
	"context"
	"testing"
	"time"

	"hue-chat/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceSets(t *testing.T) {
	db := newTestDB(t)
	clock := newTestClock()
	cfg := newTestConfig()

	sessionRepo := repository.NewSessionRepository(db)
	authSvc := NewAuthService(db, repository.NewUserRepository(db), sessionRepo,
		repository.NewFriendRepository(db), repository.NewMessageRepository(db),
		NewTypingRegistry(cfg.TypingIdle, clock.Now), cfg)
	authSvc.now = clock.Now

	svc := NewPresenceService(sessionRepo, cfg)
	svc.now = clock.Now

	ctx := context.Background()

	alice, err := authSvc.Register(ctx, "#ff0000", "secret")
	require.NoError(t, err)
	_, err = authSvc.Register(ctx, "#00ff00", "secret")
	require.NoError(t, err)

	// Both just signed in: online and active.
	online, err := svc.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#00ff00", "#ff0000"}, online)

	active, err := svc.ActiveUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#00ff00", "#ff0000"}, active)

	// Five minutes later only the identity that kept polling stays active.
	clock.Advance(5 * time.Minute)
	_, err = authSvc.ResolveSession(ctx, alice.Token)
	require.NoError(t, err)

	online, err = svc.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#00ff00", "#ff0000"}, online)

	active, err = svc.ActiveUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#ff0000"}, active)
}

func TestPresenceExpiredSessionsGoOffline(t *testing.T) {
	db := newTestDB(t)
	clock := newTestClock()
	cfg := newTestConfig()

	sessionRepo := repository.NewSessionRepository(db)
	authSvc := NewAuthService(db, repository.NewUserRepository(db), sessionRepo,
		repository.NewFriendRepository(db), repository.NewMessageRepository(db),
		NewTypingRegistry(cfg.TypingIdle, clock.Now), cfg)
	authSvc.now = clock.Now

	svc := NewPresenceService(sessionRepo, cfg)
	svc.now = clock.Now

	ctx := context.Background()
	_, err := authSvc.Register(ctx, "#ff0000", "secret")
	require.NoError(t, err)

	clock.Advance(31 * 24 * time.Hour)

	online, err := svc.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)

	active, err := svc.ActiveUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestPresenceDistinctAcrossSessions(t *testing.T) {
	db := newTestDB(t)
	clock := newTestClock()
	cfg := newTestConfig()

	sessionRepo := repository.NewSessionRepository(db)
	authSvc := NewAuthService(db, repository.NewUserRepository(db), sessionRepo,
		repository.NewFriendRepository(db), repository.NewMessageRepository(db),
		NewTypingRegistry(cfg.TypingIdle, clock.Now), cfg)
	authSvc.now = clock.Now

	svc := NewPresenceService(sessionRepo, cfg)
	svc.now = clock.Now

	ctx := context.Background()
	_, err := authSvc.Register(ctx, "#ff0000", "secret")
	require.NoError(t, err)

	// A second device signs in with the same identity.
	_, err = authSvc.Authenticate(ctx, "#ff0000", "secret")
	require.NoError(t, err)

	online, err := svc.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#ff0000"}, online)
}
