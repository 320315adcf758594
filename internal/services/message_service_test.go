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

func newMessageFixture(t *testing.T) (*MessageService, *FriendService, *TypingRegistry, *gorm.DB, *testClock) {
	t.Helper()
	db := newTestDB(t)
	clock := newTestClock()
	typing := NewTypingRegistry(5*time.Second, clock.Now)

	svc := NewMessageService(repository.NewMessageRepository(db), repository.NewFriendRepository(db), typing, nil, newTestConfig())
	svc.now = clock.Now
	svc.lastSweep = clock.Now() // keep implicit sweeps out of tests that don't want them

	friendSvc := NewFriendService(db, repository.NewFriendRepository(db), repository.NewUserRepository(db))

	authSvc := NewAuthService(db, repository.NewUserRepository(db), repository.NewSessionRepository(db),
		repository.NewFriendRepository(db), repository.NewMessageRepository(db), typing, newTestConfig())
	ctx := context.Background()
	for _, hex := range []string{"#ff0000", "#00ff00", "#0000ff"} {
		_, err := authSvc.Register(ctx, hex, "secret")
		require.NoError(t, err)
	}
	return svc, friendSvc, typing, db, clock
}

func befriend(t *testing.T, svc *FriendService, from, to string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.SendRequest(ctx, from, to))
	pending, err := svc.PendingRequests(ctx, to)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	require.NoError(t, svc.Accept(ctx, pending[0].ID, to))
}

func TestPostRejectsEmptyBody(t *testing.T) {
	svc, _, _, _, _ := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.Post(ctx, "#ff0000", "")
	assert.ErrorIs(t, err, hue_errors.ErrEmptyBody)

	_, err = svc.Post(ctx, "#ff0000", "   \n\t ")
	assert.ErrorIs(t, err, hue_errors.ErrEmptyBody)
}

func TestPostClearsTypingMark(t *testing.T) {
	svc, _, typing, _, _ := newMessageFixture(t)
	ctx := context.Background()

	typing.Mark("#ff0000")
	_, err := svc.Post(ctx, "#ff0000", "hello")
	require.NoError(t, err)
	assert.Empty(t, typing.Typing())
}

func TestEditWithinWindow(t *testing.T) {
	svc, _, _, _, clock := newMessageFixture(t)
	ctx := context.Background()

	id, err := svc.Post(ctx, "#ff0000", "hello")
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	require.NoError(t, svc.Edit(ctx, id, "#ff0000", "hello, edited"))

	feed, err := svc.Feed(ctx, "#ff0000")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "hello, edited", feed[0].Body)
	require.NotNil(t, feed[0].EditedAt)
	assert.Equal(t, clock.Now().Unix(), feed[0].EditedAt.Unix())
}

func TestEditAfterWindowExpires(t *testing.T) {
	svc, _, _, _, clock := newMessageFixture(t)
	ctx := context.Background()

	id, err := svc.Post(ctx, "#ff0000", "hello")
	require.NoError(t, err)

	clock.Advance(61 * time.Second)
	err = svc.Edit(ctx, id, "#ff0000", "too late")
	assert.ErrorIs(t, err, hue_errors.ErrWindowExpired)
}

func TestEditWindowAnchoredAtCreation(t *testing.T) {
	svc, _, _, _, clock := newMessageFixture(t)
	ctx := context.Background()

	id, err := svc.Post(ctx, "#ff0000", "hello")
	require.NoError(t, err)

	// Editing does not restart the window.
	clock.Advance(40 * time.Second)
	require.NoError(t, svc.Edit(ctx, id, "#ff0000", "first edit"))

	clock.Advance(40 * time.Second)
	err = svc.Edit(ctx, id, "#ff0000", "second edit")
	assert.ErrorIs(t, err, hue_errors.ErrWindowExpired)
}

func TestEditOwnershipAndMissing(t *testing.T) {
	svc, _, _, _, _ := newMessageFixture(t)
	ctx := context.Background()

	id, err := svc.Post(ctx, "#ff0000", "hello")
	require.NoError(t, err)

	err = svc.Edit(ctx, id, "#00ff00", "not mine")
	assert.ErrorIs(t, err, hue_errors.ErrForbidden)

	err = svc.Edit(ctx, 9999, "#ff0000", "gone")
	assert.ErrorIs(t, err, hue_errors.ErrNotFound)
}

func TestDeleteThenEdit(t *testing.T) {
	svc, _, _, _, _ := newMessageFixture(t)
	ctx := context.Background()

	id, err := svc.Post(ctx, "#ff0000", "hello")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, id, "#ff0000"))

	err = svc.Edit(ctx, id, "#ff0000", "resurrect")
	assert.ErrorIs(t, err, hue_errors.ErrAlreadyDeleted)

	err = svc.Delete(ctx, id, "#ff0000")
	assert.ErrorIs(t, err, hue_errors.ErrAlreadyDeleted)
}

func TestFeedExcludesDeletedAndOrdersOldestFirst(t *testing.T) {
	svc, _, _, _, clock := newMessageFixture(t)
	ctx := context.Background()

	first, err := svc.Post(ctx, "#ff0000", "first")
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, err := svc.Post(ctx, "#00ff00", "second")
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = svc.Post(ctx, "#0000ff", "third")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, second, "#00ff00"))

	feed, err := svc.Feed(ctx, "#ff0000")
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, first, feed[0].ID)
	assert.Equal(t, "first", feed[0].Body)
	assert.Equal(t, "third", feed[1].Body)
}

func TestReactionsAggregatePerEmoji(t *testing.T) {
	svc, _, _, _, _ := newMessageFixture(t)
	ctx := context.Background()

	id, err := svc.Post(ctx, "#ff0000", "hello")
	require.NoError(t, err)

	require.NoError(t, svc.React(ctx, id, "#00ff00", "👍"))
	require.NoError(t, svc.React(ctx, id, "#0000ff", "👍"))
	require.NoError(t, svc.React(ctx, id, "#00ff00", "🎉"))
	// Duplicate triple counts once.
	require.NoError(t, svc.React(ctx, id, "#00ff00", "👍"))

	feed, err := svc.Feed(ctx, "#ff0000")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.Len(t, feed[0].Reactions, 2)

	assert.Equal(t, "👍", feed[0].Reactions[0].Emoji)
	assert.Equal(t, 2, feed[0].Reactions[0].Count)
	assert.Equal(t, []string{"#00ff00", "#0000ff"}, feed[0].Reactions[0].Users)

	assert.Equal(t, "🎉", feed[0].Reactions[1].Emoji)
	assert.Equal(t, 1, feed[0].Reactions[1].Count)
}

func TestReactValidation(t *testing.T) {
	svc, _, _, _, _ := newMessageFixture(t)
	ctx := context.Background()

	id, err := svc.Post(ctx, "#ff0000", "hello")
	require.NoError(t, err)

	err = svc.React(ctx, id, "#00ff00", "")
	assert.ErrorIs(t, err, hue_errors.ErrInvalidInput)

	err = svc.React(ctx, 9999, "#00ff00", "👍")
	assert.ErrorIs(t, err, hue_errors.ErrNotFound)
}

func TestUnreact(t *testing.T) {
	svc, _, _, _, _ := newMessageFixture(t)
	ctx := context.Background()

	id, err := svc.Post(ctx, "#ff0000", "hello")
	require.NoError(t, err)
	require.NoError(t, svc.React(ctx, id, "#00ff00", "👍"))

	require.NoError(t, svc.Unreact(ctx, id, "#00ff00", "👍"))
	// Removing an absent reaction succeeds.
	require.NoError(t, svc.Unreact(ctx, id, "#00ff00", "👍"))

	feed, err := svc.Feed(ctx, "#ff0000")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Empty(t, feed[0].Reactions)
}

func TestFeedResolvesNicknames(t *testing.T) {
	svc, friendSvc, _, _, _ := newMessageFixture(t)
	ctx := context.Background()

	befriend(t, friendSvc, "#ff0000", "#00ff00")
	require.NoError(t, friendSvc.SetNickname(ctx, "#ff0000", "#00ff00", "greenish"))

	_, err := svc.Post(ctx, "#00ff00", "hi there")
	require.NoError(t, err)

	// The viewer with a nickname sees it, everyone else sees the hex.
	feed, err := svc.Feed(ctx, "#ff0000")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "greenish", feed[0].DisplayName)

	feed, err = svc.Feed(ctx, "#0000ff")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "#00ff00", feed[0].DisplayName)
}

func TestSearch(t *testing.T) {
	svc, friendSvc, _, _, clock := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.Post(ctx, "#ff0000", "Hello World")
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = svc.Post(ctx, "#00ff00", "unrelated")
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = svc.Post(ctx, "#ff0000", "hello again")
	require.NoError(t, err)

	// Case-insensitive body match, most recent first.
	results, err := svc.Search(ctx, "HELLO", "#0000ff")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "hello again", results[0].Body)
	assert.Equal(t, "Hello World", results[1].Body)

	// Author identity match.
	results, err = svc.Search(ctx, "#00ff00", "#0000ff")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "unrelated", results[0].Body)

	// Nickname match is viewer-specific.
	befriend(t, friendSvc, "#0000ff", "#ff0000")
	require.NoError(t, friendSvc.SetNickname(ctx, "#0000ff", "#ff0000", "crimson"))

	results, err = svc.Search(ctx, "crimson", "#0000ff")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = svc.Search(ctx, "crimson", "#00ff00")
	require.NoError(t, err)
	assert.Empty(t, results)

	// Blank query returns nothing.
	results, err = svc.Search(ctx, "   ", "#0000ff")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSweepPurgesOldMessagesAndReactions(t *testing.T) {
	svc, _, _, db, clock := newMessageFixture(t)
	ctx := context.Background()

	oldID, err := svc.Post(ctx, "#ff0000", "three days old")
	require.NoError(t, err)
	require.NoError(t, svc.React(ctx, oldID, "#00ff00", "👍"))

	clock.Advance(72 * time.Hour)
	freshID, err := svc.Post(ctx, "#ff0000", "fresh")
	require.NoError(t, err)

	purged, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	_, err = svc.messageRepo.GetByID(ctx, oldID)
	assert.ErrorIs(t, err, hue_errors.ErrNotFound)

	_, err = svc.messageRepo.GetByID(ctx, freshID)
	assert.NoError(t, err)

	var reactionCount int64
	require.NoError(t, db.Model(&message.Reaction{}).Count(&reactionCount).Error)
	assert.Zero(t, reactionCount)
}

func TestFeedTriggersThrottledSweep(t *testing.T) {
	svc, _, _, _, clock := newMessageFixture(t)
	ctx := context.Background()

	oldID, err := svc.Post(ctx, "#ff0000", "will expire")
	require.NoError(t, err)

	clock.Advance(72 * time.Hour)
	feed, err := svc.Feed(ctx, "#ff0000")
	require.NoError(t, err)
	assert.Empty(t, feed)

	_, err = svc.messageRepo.GetByID(ctx, oldID)
	assert.ErrorIs(t, err, hue_errors.ErrNotFound)

	// Within the sweep interval a second read skips the sweep.
	sweptAt := svc.lastSweep
	clock.Advance(30 * time.Second)
	_, err = svc.Feed(ctx, "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, sweptAt, svc.lastSweep)

	// Past the interval the next read sweeps again.
	clock.Advance(31 * time.Second)
	_, err = svc.Feed(ctx, "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), svc.lastSweep)
}
