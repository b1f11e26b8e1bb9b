package eventbus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBus(t *testing.T, buffer int) *EventBus {
	t.Helper()
	bus := New(buffer)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)
	return bus
}

func TestEventBus_DeliversTypedPayload(t *testing.T) {
	bus := startBus(t, 8)

	got := make(chan ConversationOpenedPayload, 1)
	bus.SubscribeConversationOpened(func(p ConversationOpenedPayload) { got <- p })

	bus.PublishConversationOpened(ConversationOpenedPayload{ConversationID: "c1", User: "alice"})

	select {
	case p := <-got:
		assert.Equal(t, "c1", p.ConversationID)
		assert.Equal(t, "alice", p.User)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := New(1) // not started, nothing drains

	var published, dropped atomic.Int32
	bus.OnPublish(func(Event, any) { published.Add(1) })
	bus.OnDrop(func(Event, any) { dropped.Add(1) })

	bus.PublishMessageSent(MessageSentPayload{})
	bus.PublishMessageSent(MessageSentPayload{})

	assert.Equal(t, int32(1), published.Load())
	assert.Equal(t, int32(1), dropped.Load())
}

func TestEventBus_PanicIsRecovered(t *testing.T) {
	bus := startBus(t, 8)

	panicked := make(chan any, 1)
	bus.OnPanic(func(_ Event, _ any, r any) { panicked <- r })

	delivered := make(chan struct{}, 1)
	bus.SubscribeTuiStarted(func(TUIStartedPayload) { panic("boom") })
	bus.SubscribeTuiStarted(func(TUIStartedPayload) { delivered <- struct{}{} })

	bus.PublishTuiStarted(TUIStartedPayload{})

	select {
	case r := <-panicked:
		assert.Equal(t, "boom", r)
	case <-time.After(time.Second):
		t.Fatal("panic hook not called")
	}

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("later subscriber skipped after panic")
	}
}

func TestEventBus_OnSubscribe(t *testing.T) {
	bus := New(1)

	var events []Event
	bus.OnSubscribe(func(e Event) { events = append(events, e) })
	bus.SubscribeAlertRaised(func(AlertRaisedPayload) {})

	require.Len(t, events, 1)
	assert.Equal(t, EventAlertRaised, events[0])
}
