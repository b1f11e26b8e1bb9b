package social

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMessage(t *testing.T) {
	t.Run("valid message", func(t *testing.T) {
		m, err := NewMessage("conv-1", "alice", "hello")
		assert.NoError(t, err)
		assert.Equal(t, "conv-1", m.ConversationID)
		assert.True(t, m.IsFrom("alice"))
	})

	t.Run("missing conversation", func(t *testing.T) {
		_, err := NewMessage("", "alice", "hello")
		assert.ErrorIs(t, err, ErrEmptyConversation)
	})

	t.Run("missing sender", func(t *testing.T) {
		_, err := NewMessage("conv-1", "  ", "hello")
		assert.ErrorIs(t, err, ErrEmptySender)
	})

	t.Run("blank body", func(t *testing.T) {
		_, err := NewMessage("conv-1", "alice", " \n ")
		assert.ErrorIs(t, err, ErrEmptyBody)
	})

	t.Run("body at max size", func(t *testing.T) {
		_, err := NewMessage("conv-1", "alice", strings.Repeat("x", MaxBodySize))
		assert.NoError(t, err)
	})

	t.Run("body too large", func(t *testing.T) {
		_, err := NewMessage("conv-1", "alice", strings.Repeat("x", MaxBodySize+1))
		assert.ErrorIs(t, err, ErrBodyTooLarge)
	})
}

func TestConversation_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Conversation{Participants: []string{"alice"}}).Validate(), ErrNoParticipants)
	assert.ErrorIs(t, (&Conversation{Participants: []string{"alice", "alice", ""}}).Validate(), ErrNoParticipants)
	assert.NoError(t, (&Conversation{Participants: []string{"alice", "bob"}}).Validate())
}

func TestConversation_DisplayTitle(t *testing.T) {
	c := Conversation{Participants: []string{"alice", "bob", "carol"}}
	assert.Equal(t, "bob, carol", c.DisplayTitle("alice"))

	c.Title = "book club"
	assert.Equal(t, "book club", c.DisplayTitle("alice"))
}

func TestNewFriendRequest(t *testing.T) {
	r, err := NewFriendRequest("alice", "bob")
	assert.NoError(t, err)
	assert.Equal(t, RequestPending, r.Status)

	_, err = NewFriendRequest("alice", "alice")
	assert.ErrorIs(t, err, ErrSelfRequest)

	_, err = NewFriendRequest("", "bob")
	assert.ErrorIs(t, err, ErrEmptySender)
}
