package stores

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/murmur/internal/core/feed"
	"github.com/colonyops/murmur/internal/core/social"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next[T any](t *testing.T, sub feed.Subscription[T]) feed.Event[T] {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for feed event")
		return feed.Event[T]{}
	}
}

func TestFeeds_UnreadSnapshotThenLive(t *testing.T) {
	database := openTestDB(t)
	convos := NewConversationStore(database)
	msgs := NewMessageStore(database)

	c1 := createConversation(t, convos, "", "alice", "bob")
	c2 := createConversation(t, convos, "", "alice", "carol")
	base := time.Now().Add(time.Minute)
	sendAt(t, msgs, c1.ID, "bob", "hi", base)

	feeds, err := NewFeeds(database, FeedsConfig{Interval: time.Hour, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = feeds.Close() })

	sub, err := feeds.Unread().Subscribe(context.Background(), feed.Filter{ID: "alice"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	ev := next(t, sub)
	assert.Equal(t, feed.KindAdded, ev.Kind)
	assert.Equal(t, c1.ID, ev.Key)
	assert.Equal(t, feed.KindReady, next(t, sub).Kind)

	sendAt(t, msgs, c2.ID, "carol", "hey", base.Add(time.Second))
	feeds.Notify()

	ev = next(t, sub)
	assert.Equal(t, feed.KindAdded, ev.Kind)
	assert.Equal(t, c2.ID, ev.Key)
}

func TestFeeds_MessagesAndRequests(t *testing.T) {
	database := openTestDB(t)
	convos := NewConversationStore(database)
	msgs := NewMessageStore(database)
	reqs := NewRequestStore(database)

	c := createConversation(t, convos, "", "alice", "bob")
	sent := sendAt(t, msgs, c.ID, "bob", "hi", time.Now())
	_, err := reqs.Send(context.Background(), social.FriendRequest{From: "carol", To: "alice"})
	require.NoError(t, err)

	feeds, err := NewFeeds(database, FeedsConfig{Interval: time.Hour, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = feeds.Close() })

	msub, err := feeds.Messages().Subscribe(context.Background(), feed.Filter{ID: c.ID})
	require.NoError(t, err)
	t.Cleanup(func() { _ = msub.Close() })

	ev := next(t, msub)
	assert.Equal(t, sent.ID, ev.Key)
	assert.Equal(t, "hi", ev.Item.Body)
	assert.Equal(t, feed.KindReady, next(t, msub).Kind)

	rsub, err := feeds.Requests().Subscribe(context.Background(), feed.Filter{ID: "alice"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rsub.Close() })

	rev := next(t, rsub)
	assert.Equal(t, feed.KindAdded, rev.Kind)
	assert.Equal(t, "carol", rev.Item.From)
	assert.Equal(t, feed.KindReady, next(t, rsub).Kind)
}

func TestFeeds_SubscribeAfterClose(t *testing.T) {
	database := openTestDB(t)

	feeds, err := NewFeeds(database, FeedsConfig{Watch: true, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, feeds.Close())
	require.NoError(t, feeds.Close())

	_, err = feeds.Unread().Subscribe(context.Background(), feed.Filter{ID: "alice"})
	assert.ErrorIs(t, err, feed.ErrClosed)
}
