package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultPollInterval = time.Second
	eventBufferSize     = 128
)

// Source describes how a Poller reads and identifies items.
type Source[T any] struct {
	// Name identifies the feed in logs.
	Name string
	// Load returns the full current snapshot for the filter, in display order.
	Load func(ctx context.Context, f Filter) ([]T, error)
	// Key returns a stable identity for an item.
	Key func(T) string
	// Version returns a value that changes whenever the item changes. When
	// nil, changed events are never emitted.
	Version func(T) string
}

// PollConfig tunes a Poller.
type PollConfig struct {
	Interval time.Duration
	Wake     WakeSource
	Logger   zerolog.Logger
}

// Poller is a Feed backed by periodic snapshots. Each snapshot is diffed
// against the previous one by key; the first successful snapshot is
// delivered as added events followed by a single ready event.
type Poller[T any] struct {
	src Source[T]
	cfg PollConfig
}

var _ Feed[struct{}] = (*Poller[struct{}])(nil)

// NewPoller creates a polling feed.
func NewPoller[T any](src Source[T], cfg PollConfig) *Poller[T] {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPollInterval
	}
	return &Poller[T]{src: src, cfg: cfg}
}

// Subscribe starts polling for f. The first snapshot is taken in the
// background; until it succeeds the subscription stays not-ready.
func (p *Poller[T]) Subscribe(ctx context.Context, f Filter) (Subscription[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &pollSubscription[T]{
		events: make(chan Event[T], eventBufferSize),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	logger := p.cfg.Logger.With().
		Str("feed", p.src.Name).
		Str("filter", f.ID).
		Logger()

	go s.run(ctx, p, f, logger)
	return s, nil
}

type pollSubscription[T any] struct {
	events chan Event[T]
	ready  atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *pollSubscription[T]) Events() <-chan Event[T] {
	return s.events
}

func (s *pollSubscription[T]) Ready() bool {
	return s.ready.Load()
}

func (s *pollSubscription[T]) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

func (s *pollSubscription[T]) run(ctx context.Context, p *Poller[T], f Filter, logger zerolog.Logger) {
	defer close(s.done)
	defer close(s.events)

	var wake <-chan struct{}
	if p.cfg.Wake != nil {
		ch, stop := p.cfg.Wake.Subscribe()
		defer stop()
		wake = ch
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	known := make(map[string]string)

	if !s.poll(ctx, p, f, known, logger) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-wake:
		}

		if !s.poll(ctx, p, f, known, logger) {
			return
		}
	}
}

// poll takes one snapshot and emits the difference. It returns false when
// the subscription has been cancelled.
func (s *pollSubscription[T]) poll(ctx context.Context, p *Poller[T], f Filter, known map[string]string, logger zerolog.Logger) bool {
	items, err := p.src.Load(ctx, f)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		logger.Warn().Err(err).Bool("ready", s.ready.Load()).Msg("feed snapshot failed")
		return true
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := p.src.Key(item)
		seen[key] = struct{}{}

		version := ""
		if p.src.Version != nil {
			version = p.src.Version(item)
		}

		prev, ok := known[key]
		known[key] = version

		switch {
		case !ok:
			if !s.emit(ctx, Event[T]{Kind: KindAdded, Key: key, Item: item}) {
				return false
			}
		case prev != version:
			if !s.emit(ctx, Event[T]{Kind: KindChanged, Key: key, Item: item}) {
				return false
			}
		}
	}

	for key := range known {
		if _, ok := seen[key]; ok {
			continue
		}
		delete(known, key)
		if !s.emit(ctx, Event[T]{Kind: KindRemoved, Key: key}) {
			return false
		}
	}

	if !s.ready.Load() {
		s.ready.Store(true)
		logger.Debug().Int("items", len(items)).Msg("feed ready")
		if !s.emit(ctx, Event[T]{Kind: KindReady}) {
			return false
		}
	}

	return true
}

func (s *pollSubscription[T]) emit(ctx context.Context, ev Event[T]) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
