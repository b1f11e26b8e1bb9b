package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/data/db"
	"github.com/google/uuid"
)

// MessageStore implements social.MessageStore using SQLite.
type MessageStore struct {
	db *db.DB
}

var _ social.MessageStore = (*MessageStore)(nil)

// NewMessageStore creates a new SQLite-backed message store.
func NewMessageStore(db *db.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Send validates and saves a message. The conversation's activity time and
// the sender's read receipt move to the message time.
func (s *MessageStore) Send(ctx context.Context, m social.Message) (social.Message, error) {
	if err := m.Validate(); err != nil {
		return social.Message{}, err
	}

	m.ID = uuid.NewString()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	ts := m.CreatedAt.UnixNano()

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var member int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM participants WHERE conversation_id = ? AND user = ?`,
			m.ConversationID, m.Sender,
		).Scan(&member)
		if err != nil {
			return fmt.Errorf("check participant: %w", err)
		}
		if member == 0 {
			return social.ErrNotFound
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, conversation_id, sender, body, created_at) VALUES (?, ?, ?, ?, ?)`,
			m.ID, m.ConversationID, m.Sender, m.Body, ts,
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE conversations SET last_message_at = MAX(last_message_at, ?) WHERE id = ?`,
			ts, m.ConversationID,
		)
		if err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE participants SET last_read_at = MAX(last_read_at, ?) WHERE conversation_id = ? AND user = ?`,
			ts, m.ConversationID, m.Sender,
		)
		if err != nil {
			return fmt.Errorf("update read receipt: %w", err)
		}
		return nil
	})
	if err != nil {
		return social.Message{}, err
	}

	return m, nil
}

// List returns the newest limit messages of a conversation in chronological
// order. A limit <= 0 returns every message.
func (s *MessageStore) List(ctx context.Context, conversationID string, limit int) ([]social.Message, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, conversation_id, sender, body, created_at FROM (
			SELECT rowid AS seq, id, conversation_id, sender, body, created_at
			FROM messages
			WHERE conversation_id = ?
			ORDER BY created_at DESC, seq DESC
			LIMIT ?
		) ORDER BY created_at, seq`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []social.Message
	for rows.Next() {
		var (
			m       social.Message
			created int64
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Sender, &m.Body, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = time.Unix(0, created)
		result = append(result, m)
	}

	return result, rows.Err()
}

// Prune removes messages older than the given duration.
func (s *MessageStore) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan).UnixNano()
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM messages WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune messages: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune messages: %w", err)
	}
	return int(n), nil
}
