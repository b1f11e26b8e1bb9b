package stores

import (
	"context"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/colonyops/murmur/internal/core/feed"
	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/data/db"
	"github.com/rs/zerolog"
)

// Feed names, used as log fields and notifier feed IDs.
const (
	FeedMessages = "messages"
	FeedUnread   = "unread-conversations"
	FeedRequests = "friend-requests"
)

// FeedsConfig tunes the live feeds.
type FeedsConfig struct {
	Interval     time.Duration
	MessageLimit int
	// Watch wakes pollers on database file changes made by other processes.
	Watch  bool
	Logger zerolog.Logger
}

// Feeds builds the three live feeds the UI subscribes to. Every feed is a
// feed.Poller over the SQLite stores, woken early by local writes and, when
// enabled, by changes to the database file.
type Feeds struct {
	messages *feed.Poller[social.Message]
	unread   *feed.Poller[social.UnreadConversation]
	requests *feed.Poller[social.FriendRequest]

	local   *feed.Signal
	watcher *feed.FileWatcher
	closed  atomic.Bool
}

// NewFeeds creates the feed factory. Close releases the file watcher.
func NewFeeds(database *db.DB, cfg FeedsConfig) (*Feeds, error) {
	f := &Feeds{local: feed.NewSignal()}

	wake := feed.Multi{f.local}
	if cfg.Watch {
		w, err := feed.NewFileWatcher(filepath.Dir(database.Path()), db.FileName, cfg.Logger)
		if err != nil {
			return nil, err
		}
		f.watcher = w
		wake = append(wake, w)
	}

	pc := feed.PollConfig{Interval: cfg.Interval, Wake: wake, Logger: cfg.Logger}

	convos := NewConversationStore(database)
	msgs := NewMessageStore(database)
	reqs := NewRequestStore(database)

	f.messages = feed.NewPoller(feed.Source[social.Message]{
		Name: FeedMessages,
		Load: func(ctx context.Context, flt feed.Filter) ([]social.Message, error) {
			limit := flt.Limit
			if limit == 0 {
				limit = cfg.MessageLimit
			}
			return msgs.List(ctx, flt.ID, limit)
		},
		Key: func(m social.Message) string { return m.ID },
	}, pc)

	f.unread = feed.NewPoller(feed.Source[social.UnreadConversation]{
		Name: FeedUnread,
		Load: func(ctx context.Context, flt feed.Filter) ([]social.UnreadConversation, error) {
			return convos.Unread(ctx, flt.ID)
		},
		Key: func(u social.UnreadConversation) string { return u.ConversationID },
		Version: func(u social.UnreadConversation) string {
			return strconv.Itoa(u.Unread) + ":" + strconv.FormatInt(u.NewestMessageAt.UnixNano(), 10)
		},
	}, pc)

	f.requests = feed.NewPoller(feed.Source[social.FriendRequest]{
		Name: FeedRequests,
		Load: func(ctx context.Context, flt feed.Filter) ([]social.FriendRequest, error) {
			return reqs.Pending(ctx, flt.ID)
		},
		Key:     func(r social.FriendRequest) string { return r.ID },
		Version: func(r social.FriendRequest) string { return string(r.Status) },
	}, pc)

	return f, nil
}

// Messages streams the messages of the conversation named by Filter.ID.
func (f *Feeds) Messages() feed.Feed[social.Message] {
	return guarded[social.Message]{closed: &f.closed, inner: f.messages}
}

// Unread streams the unread conversations of the user named by Filter.ID.
func (f *Feeds) Unread() feed.Feed[social.UnreadConversation] {
	return guarded[social.UnreadConversation]{closed: &f.closed, inner: f.unread}
}

// Requests streams the pending friend requests of the user named by Filter.ID.
func (f *Feeds) Requests() feed.Feed[social.FriendRequest] {
	return guarded[social.FriendRequest]{closed: &f.closed, inner: f.requests}
}

// Notify wakes every subscription immediately. Call it after a local write.
func (f *Feeds) Notify() {
	f.local.Fire()
}

// Close stops the file watcher. Later subscribes fail with feed.ErrClosed;
// existing subscriptions keep polling until closed.
func (f *Feeds) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	if f.watcher != nil {
		return f.watcher.Close()
	}
	return nil
}

type guarded[T any] struct {
	closed *atomic.Bool
	inner  feed.Feed[T]
}

func (g guarded[T]) Subscribe(ctx context.Context, flt feed.Filter) (feed.Subscription[T], error) {
	if g.closed.Load() {
		return nil, feed.ErrClosed
	}
	return g.inner.Subscribe(ctx, flt)
}
