package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Body string
}

// memSource is a mutable snapshot source for tests.
type memSource struct {
	mu    sync.Mutex
	items []item
	err   error
	calls int
}

func (m *memSource) set(items ...item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
}

func (m *memSource) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *memSource) load(_ context.Context, _ Filter) ([]item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func newTestPoller(src *memSource, wake WakeSource) *Poller[item] {
	return NewPoller(Source[item]{
		Name:    "test",
		Load:    src.load,
		Key:     func(i item) string { return i.ID },
		Version: func(i item) string { return i.Body },
	}, PollConfig{
		Interval: time.Hour,
		Wake:     wake,
		Logger:   zerolog.Nop(),
	})
}

// next reads one event or fails the test after a timeout.
func next(t *testing.T, sub Subscription[item]) Event[item] {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed event")
		return Event[item]{}
	}
}

func TestPoller_SnapshotThenReady(t *testing.T) {
	src := &memSource{}
	src.set(item{"a", "1"}, item{"b", "1"}, item{"c", "1"})

	sub, err := newTestPoller(src, nil).Subscribe(context.Background(), Filter{ID: "conv-1"})
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	for _, want := range []string{"a", "b", "c"} {
		ev := next(t, sub)
		assert.Equal(t, KindAdded, ev.Kind)
		assert.Equal(t, want, ev.Key)
	}

	ev := next(t, sub)
	assert.Equal(t, KindReady, ev.Kind)
	assert.True(t, sub.Ready())
}

func TestPoller_DiffsLaterSnapshots(t *testing.T) {
	src := &memSource{}
	src.set(item{"a", "1"}, item{"b", "1"})
	wake := NewSignal()

	sub, err := newTestPoller(src, wake).Subscribe(context.Background(), Filter{})
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	next(t, sub)
	next(t, sub)
	require.Equal(t, KindReady, next(t, sub).Kind)

	src.set(item{"a", "2"}, item{"c", "1"})
	wake.Fire()

	got := map[Kind]string{}
	for i := 0; i < 3; i++ {
		ev := next(t, sub)
		got[ev.Kind] = ev.Key
	}

	assert.Equal(t, map[Kind]string{
		KindChanged: "a",
		KindAdded:   "c",
		KindRemoved: "b",
	}, got)
}

func TestPoller_FailingFirstSnapshotStaysLoading(t *testing.T) {
	src := &memSource{}
	src.fail(errors.New("backend down"))
	wake := NewSignal()

	sub, err := newTestPoller(src, wake).Subscribe(context.Background(), Filter{})
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	wake.Fire()
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
	assert.False(t, sub.Ready())

	src.fail(nil)
	src.set(item{"a", "1"})
	wake.Fire()

	assert.Equal(t, KindAdded, next(t, sub).Kind)
	assert.Equal(t, KindReady, next(t, sub).Kind)
}

func TestPoller_CloseStopsEvents(t *testing.T) {
	src := &memSource{}
	src.set(item{"a", "1"})

	sub, err := newTestPoller(src, nil).Subscribe(context.Background(), Filter{})
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	// drain whatever was buffered before close; the channel must end
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed")
		}
	}
}

func TestPoller_SubscribeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPoller(&memSource{}, nil).Subscribe(ctx, Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSignal_Coalesces(t *testing.T) {
	s := NewSignal()
	ch, stop := s.Subscribe()
	defer stop()

	s.Fire()
	s.Fire()

	<-ch
	select {
	case <-ch:
		t.Fatal("expected wake-ups to coalesce")
	default:
	}
}

func TestMulti_MergesSources(t *testing.T) {
	a, b := NewSignal(), NewSignal()
	ch, stop := Multi{a, nil, b}.Subscribe()
	defer stop()

	b.Fire()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected wake from second source")
	}
}
