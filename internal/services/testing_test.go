package services

import (
	"testing"
	"time"

	"hue-chat/config"
	"hue-chat/internal/domain/friend"
	"hue-chat/internal/domain/message"
	"hue-chat/internal/domain/user"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema. The pool
// is pinned to one connection so every query sees the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&user.Session{},
		&friend.Request{},
		&friend.Friendship{},
		&message.Message{},
		&message.Reaction{},
	))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		SessionTTL:       30 * 24 * time.Hour,
		ActiveWindow:     60 * time.Second,
		TypingIdle:       5 * time.Second,
		EditWindow:       time.Minute,
		RetentionHorizon: 48 * time.Hour,
		SweepInterval:    time.Minute,
		PreviewTimeout:   time.Second,
		FeedLimit:        100,
		SearchLimit:      50,
	}
}

// testClock is a manually advanced clock for driving time-window logic.
type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
