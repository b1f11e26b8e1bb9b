package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/data/db"
	"github.com/google/uuid"
)

// RequestStore implements social.RequestStore using SQLite.
type RequestStore struct {
	db *db.DB
}

var _ social.RequestStore = (*RequestStore)(nil)

// NewRequestStore creates a new SQLite-backed friend request store.
func NewRequestStore(db *db.DB) *RequestStore {
	return &RequestStore{db: db}
}

// Send saves a new pending request. Sending the same pending request twice
// returns the existing one.
func (s *RequestStore) Send(ctx context.Context, r social.FriendRequest) (social.FriendRequest, error) {
	if err := r.Validate(); err != nil {
		return social.FriendRequest{}, err
	}

	existing, err := s.scanOne(ctx, `
		SELECT id, from_user, to_user, status, created_at FROM friend_requests
		WHERE from_user = ? AND to_user = ? AND status = ?`,
		r.From, r.To, string(social.RequestPending))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, social.ErrNotFound) {
		return social.FriendRequest{}, err
	}

	r.ID = uuid.NewString()
	r.Status = social.RequestPending
	r.CreatedAt = time.Now()

	_, err = s.db.Conn().ExecContext(ctx,
		`INSERT INTO friend_requests (id, from_user, to_user, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.From, r.To, string(r.Status), r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return social.FriendRequest{}, fmt.Errorf("insert friend request: %w", err)
	}

	return r, nil
}

// Pending returns pending requests addressed to user, oldest first.
func (s *RequestStore) Pending(ctx context.Context, user string) ([]social.FriendRequest, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, from_user, to_user, status, created_at FROM friend_requests
		WHERE to_user = ? AND status = ?
		ORDER BY created_at, id`, user, string(social.RequestPending))
	if err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []social.FriendRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan friend request: %w", err)
		}
		result = append(result, r)
	}

	return result, rows.Err()
}

// Respond accepts or declines a pending request.
func (s *RequestStore) Respond(ctx context.Context, id string, status social.RequestStatus) error {
	if status != social.RequestAccepted && status != social.RequestDeclined {
		return fmt.Errorf("invalid response status %q", status)
	}

	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE friend_requests SET status = ? WHERE id = ? AND status = ?`,
		string(status), id, string(social.RequestPending))
	if err != nil {
		return fmt.Errorf("respond to friend request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("respond to friend request: %w", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := s.scanOne(ctx, `
		SELECT id, from_user, to_user, status, created_at FROM friend_requests WHERE id = ?`, id); err != nil {
		return err
	}
	return social.ErrAlreadyHandled
}

// Friends returns everyone user has an accepted request with, in either
// direction, sorted by name.
func (s *RequestStore) Friends(ctx context.Context, user string) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT to_user FROM friend_requests WHERE from_user = ? AND status = ?
		UNION
		SELECT from_user FROM friend_requests WHERE to_user = ? AND status = ?
		ORDER BY 1`,
		user, string(social.RequestAccepted), user, string(social.RequestAccepted))
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer func() { _ = rows.Close() }()

	friends := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friends = append(friends, name)
	}

	return friends, rows.Err()
}

func (s *RequestStore) scanOne(ctx context.Context, query string, args ...any) (social.FriendRequest, error) {
	r, err := scanRequest(s.db.Conn().QueryRowContext(ctx, query, args...))
	if IsNotFoundError(err) {
		return social.FriendRequest{}, social.ErrNotFound
	}
	if err != nil {
		return social.FriendRequest{}, fmt.Errorf("get friend request: %w", err)
	}
	return r, nil
}

func scanRequest(row rowScanner) (social.FriendRequest, error) {
	var (
		r       social.FriendRequest
		status  string
		created int64
	)
	if err := row.Scan(&r.ID, &r.From, &r.To, &status, &created); err != nil {
		return social.FriendRequest{}, err
	}
	r.Status = social.RequestStatus(status)
	r.CreatedAt = time.Unix(0, created)
	return r, nil
}
