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

// ConversationStore implements social.ConversationStore using SQLite.
type ConversationStore struct {
	db *db.DB
}

var _ social.ConversationStore = (*ConversationStore)(nil)

// NewConversationStore creates a new SQLite-backed conversation store.
func NewConversationStore(db *db.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Create saves a new conversation with its participants.
func (s *ConversationStore) Create(ctx context.Context, c social.Conversation) (social.Conversation, error) {
	if err := c.Validate(); err != nil {
		return social.Conversation{}, err
	}

	c.ID = uuid.NewString()
	now := time.Now()
	c.CreatedAt = now
	c.LastMessageAt = now
	c.Participants = uniqueParticipants(c.Participants)

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (id, title, created_at, last_message_at) VALUES (?, ?, ?, ?)`,
			c.ID, c.Title, now.UnixNano(), now.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}

		for _, p := range c.Participants {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO participants (conversation_id, user, last_read_at) VALUES (?, ?, ?)`,
				c.ID, p, now.UnixNano(),
			)
			if err != nil {
				return fmt.Errorf("insert participant %s: %w", p, err)
			}
		}
		return nil
	})
	if err != nil {
		return social.Conversation{}, err
	}

	return c, nil
}

// Get returns a conversation by ID. Returns social.ErrNotFound if missing.
func (s *ConversationStore) Get(ctx context.Context, id string) (social.Conversation, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT id, title, created_at, last_message_at FROM conversations WHERE id = ?`, id)

	c, err := scanConversation(row)
	if IsNotFoundError(err) {
		return social.Conversation{}, social.ErrNotFound
	}
	if err != nil {
		return social.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}

	if c.Participants, err = s.participants(ctx, c.ID); err != nil {
		return social.Conversation{}, err
	}
	return c, nil
}

// ListFor returns the conversations user participates in, newest activity first.
func (s *ConversationStore) ListFor(ctx context.Context, user string) ([]social.Conversation, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT c.id, c.title, c.created_at, c.last_message_at
		FROM conversations c
		JOIN participants p ON p.conversation_id = c.id
		WHERE p.user = ?
		ORDER BY c.last_message_at DESC, c.id`, user)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []social.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	for i := range result {
		if result[i].Participants, err = s.participants(ctx, result[i].ID); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Newest returns the conversation with the most recent activity for user.
func (s *ConversationStore) Newest(ctx context.Context, user string) (social.Conversation, error) {
	var id string
	err := s.db.Conn().QueryRowContext(ctx, `
		SELECT c.id
		FROM conversations c
		JOIN participants p ON p.conversation_id = c.id
		WHERE p.user = ?
		ORDER BY c.last_message_at DESC, c.id
		LIMIT 1`, user).Scan(&id)
	if IsNotFoundError(err) {
		return social.Conversation{}, social.ErrNotFound
	}
	if err != nil {
		return social.Conversation{}, fmt.Errorf("newest conversation: %w", err)
	}
	return s.Get(ctx, id)
}

// MarkRead moves the user's read receipt forward to at. Receipts never move
// backwards.
func (s *ConversationStore) MarkRead(ctx context.Context, conversationID, user string, at time.Time) error {
	res, err := s.db.Conn().ExecContext(ctx, `
		UPDATE participants SET last_read_at = MAX(last_read_at, ?)
		WHERE conversation_id = ? AND user = ?`,
		at.UnixNano(), conversationID, user)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n == 0 {
		return social.ErrNotFound
	}
	return nil
}

// Unread returns conversations with messages from others that are newer
// than the user's read receipt, newest first.
func (s *ConversationStore) Unread(ctx context.Context, user string) ([]social.UnreadConversation, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT c.id,
		       COALESCE(NULLIF(c.title, ''), (
		           SELECT group_concat(o.user, ', ') FROM participants o
		           WHERE o.conversation_id = c.id AND o.user != p.user
		       ), ''),
		       COUNT(m.id),
		       MAX(m.created_at)
		FROM participants p
		JOIN conversations c ON c.id = p.conversation_id
		JOIN messages m ON m.conversation_id = c.id
		    AND m.sender != p.user
		    AND m.created_at > p.last_read_at
		WHERE p.user = ?
		GROUP BY c.id
		ORDER BY MAX(m.created_at) DESC, c.id`, user)
	if err != nil {
		return nil, fmt.Errorf("list unread: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []social.UnreadConversation
	for rows.Next() {
		var (
			u      social.UnreadConversation
			newest int64
		)
		if err := rows.Scan(&u.ConversationID, &u.Title, &u.Unread, &newest); err != nil {
			return nil, fmt.Errorf("scan unread: %w", err)
		}
		u.NewestMessageAt = time.Unix(0, newest)
		result = append(result, u)
	}

	return result, rows.Err()
}

func (s *ConversationStore) participants(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT user FROM participants WHERE conversation_id = ? ORDER BY rowid`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (social.Conversation, error) {
	var (
		c                  social.Conversation
		created, lastMsgAt int64
	)
	if err := row.Scan(&c.ID, &c.Title, &created, &lastMsgAt); err != nil {
		return social.Conversation{}, err
	}
	c.CreatedAt = time.Unix(0, created)
	c.LastMessageAt = time.Unix(0, lastMsgAt)
	return c, nil
}

func uniqueParticipants(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
