package inbox

import (
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/murmur/internal/core/feed"
	"github.com/colonyops/murmur/internal/core/social"
)

func conversations() []social.Conversation {
	now := time.Now()
	return []social.Conversation{
		{ID: "c1", Participants: []string{"alice", "bob"}, LastMessageAt: now},
		{ID: "c2", Title: "team", Participants: []string{"alice", "bob", "carol"}, LastMessageAt: now.Add(-time.Hour)},
	}
}

func request(id, from string) social.FriendRequest {
	return social.FriendRequest{ID: id, From: from, To: "alice", Status: social.RequestPending, CreatedAt: time.Now()}
}

func TestView_UnreadEvents(t *testing.T) {
	v := New("alice")
	v.SetConversations(conversations())

	v.ApplyUnread(feed.Event[social.UnreadConversation]{
		Kind: feed.KindAdded, Key: "c1",
		Item: social.UnreadConversation{ConversationID: "c1", Unread: 2},
	})
	assert.Equal(t, 1, v.UnreadCount())

	v.ApplyUnread(feed.Event[social.UnreadConversation]{
		Kind: feed.KindChanged, Key: "c1",
		Item: social.UnreadConversation{ConversationID: "c1", Unread: 3},
	})
	u, ok := v.Unread("c1")
	require.True(t, ok)
	assert.Equal(t, 3, u.Unread)
	assert.Contains(t, ansi.Strip(v.View()), "(3)")

	v.ApplyUnread(feed.Event[social.UnreadConversation]{Kind: feed.KindRemoved, Key: "c1"})
	assert.Equal(t, 0, v.UnreadCount())

	v.ApplyUnread(feed.Event[social.UnreadConversation]{Kind: feed.KindReady})
	assert.Equal(t, 0, v.UnreadCount())
}

func TestView_RequestEvents(t *testing.T) {
	v := New("alice")

	v.ApplyRequest(feed.Event[social.FriendRequest]{Kind: feed.KindAdded, Key: "r1", Item: request("r1", "bob")})
	v.ApplyRequest(feed.Event[social.FriendRequest]{Kind: feed.KindAdded, Key: "r2", Item: request("r2", "carol")})
	v.ApplyRequest(feed.Event[social.FriendRequest]{Kind: feed.KindAdded, Key: "r2", Item: request("r2", "carol")})
	assert.Equal(t, 2, v.RequestCount())

	v.SetSection(SectionRequests)
	v.MoveDown()
	assert.Equal(t, 1, v.Cursor())

	v.ApplyRequest(feed.Event[social.FriendRequest]{Kind: feed.KindRemoved, Key: "r2"})
	assert.Equal(t, 1, v.RequestCount())
	assert.Equal(t, 0, v.Cursor(), "cursor clamps to remaining items")
}

func TestView_Navigation(t *testing.T) {
	v := New("alice")
	v.SetConversations(conversations())
	v.ApplyRequest(feed.Event[social.FriendRequest]{Kind: feed.KindAdded, Key: "r1", Item: request("r1", "bob")})

	sel, ok := v.Selected()
	require.True(t, ok)
	require.NotNil(t, sel.Conversation)
	assert.Equal(t, "c1", sel.Conversation.ID)

	v.MoveUp()
	assert.Equal(t, 0, v.Cursor())
	v.MoveDown()
	v.MoveDown()
	assert.Equal(t, 1, v.Cursor())

	sel, ok = v.Selected()
	require.True(t, ok)
	assert.Equal(t, "c2", sel.Conversation.ID)

	v.ToggleSection()
	assert.Equal(t, SectionRequests, v.Section())
	sel, ok = v.Selected()
	require.True(t, ok)
	require.NotNil(t, sel.Request)
	assert.Equal(t, "bob", sel.Request.From)

	v.ToggleSection()
	assert.Equal(t, SectionConversations, v.Section())
}

func TestView_SelectedEmpty(t *testing.T) {
	v := New("alice")
	_, ok := v.Selected()
	assert.False(t, ok)

	v.SetSection(SectionRequests)
	_, ok = v.Selected()
	assert.False(t, ok)
}

func TestView_Render(t *testing.T) {
	v := New("alice")
	v.SetSize(40, 20)

	out := ansi.Strip(v.View())
	assert.Contains(t, out, "No conversations")
	assert.Contains(t, out, "No Requests")

	v.SetConversations(conversations())
	v.SetActive("c2")
	v.ApplyRequest(feed.Event[social.FriendRequest]{Kind: feed.KindAdded, Key: "r1", Item: request("r1", "dave")})

	out = ansi.Strip(v.View())
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "● team")
	assert.Contains(t, out, "dave")
	assert.NotContains(t, out, "No Requests")
}

func TestView_Lookup(t *testing.T) {
	v := New("alice")
	v.SetConversations(conversations())

	assert.True(t, v.Has("c2"))
	assert.False(t, v.Has("c9"))

	c, ok := v.Conversation("c2")
	require.True(t, ok)
	assert.Equal(t, "team", c.Title)

	_, ok = v.Conversation("c9")
	assert.False(t, ok)
}

func TestView_RequestsPanel(t *testing.T) {
	v := New("alice")
	v.SetSize(40, 20)
	v.SetConversations(conversations())
	v.ApplyRequest(feed.Event[social.FriendRequest]{Kind: feed.KindAdded, Key: "r1", Item: request("r1", "dave")})

	v.SetInlineRequests(false)
	out := ansi.Strip(v.View())
	assert.Contains(t, out, "Conversations")
	assert.NotContains(t, out, "dave")

	panel := ansi.Strip(v.RequestsView(30, 10))
	assert.Contains(t, panel, "Requests")
	assert.Contains(t, panel, "dave")
	assert.NotContains(t, panel, "team")
}

func TestView_Friends(t *testing.T) {
	v := New("alice")
	v.SetSize(40, 30)

	out := ansi.Strip(v.View())
	assert.Contains(t, out, "Friends")
	assert.Contains(t, out, "No friends yet")

	v.SetFriends([]string{"bob", "carol"})
	assert.Equal(t, []string{"bob", "carol"}, v.Friends())

	out = ansi.Strip(v.View())
	assert.Contains(t, out, "carol")
	assert.NotContains(t, out, "No friends yet")

	v.SetInlineRequests(false)
	assert.NotContains(t, ansi.Strip(v.View()), "Friends")
	assert.Contains(t, ansi.Strip(v.RequestsView(30, 20)), "carol")

	// Friends are listed, never selected.
	v.SetSection(SectionRequests)
	_, ok := v.Selected()
	assert.False(t, ok)
}
