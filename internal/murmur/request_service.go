package murmur

import (
	"context"

	"github.com/colonyops/murmur/internal/core/social"
)

// RequestService wraps social.RequestStore with domain logic.
type RequestService struct {
	store social.RequestStore
}

// NewRequestService creates a new RequestService.
func NewRequestService(store social.RequestStore) *RequestService {
	return &RequestService{store: store}
}

// Send asks to befriend to. Sending again while a request is pending
// returns the existing request.
func (s *RequestService) Send(ctx context.Context, from, to string) (social.FriendRequest, error) {
	r, err := social.NewFriendRequest(from, to)
	if err != nil {
		return social.FriendRequest{}, err
	}
	return s.store.Send(ctx, r)
}

// Pending returns the requests waiting on user.
func (s *RequestService) Pending(ctx context.Context, user string) ([]social.FriendRequest, error) {
	return s.store.Pending(ctx, user)
}

// Accept accepts a pending request.
func (s *RequestService) Accept(ctx context.Context, id string) error {
	return s.store.Respond(ctx, id, social.RequestAccepted)
}

// Decline declines a pending request.
func (s *RequestService) Decline(ctx context.Context, id string) error {
	return s.store.Respond(ctx, id, social.RequestDeclined)
}

// Friends lists the users user has befriended.
func (s *RequestService) Friends(ctx context.Context, user string) ([]string, error) {
	return s.store.Friends(ctx, user)
}
