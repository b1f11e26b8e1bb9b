package stores

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/data/db"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err, "Open")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func createConversation(t *testing.T, s *ConversationStore, title string, users ...string) social.Conversation {
	t.Helper()
	c, err := s.Create(context.Background(), social.Conversation{Title: title, Participants: users})
	require.NoError(t, err)
	return c
}

func sendAt(t *testing.T, s *MessageStore, convID, sender, body string, at time.Time) social.Message {
	t.Helper()
	m, err := social.NewMessage(convID, sender, body)
	require.NoError(t, err)
	m.CreatedAt = at
	m, err = s.Send(context.Background(), m)
	require.NoError(t, err)
	return m
}
