package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus is an asynchronous typed event bus. Publish never blocks: events
// are queued on a bounded buffer and dropped when it is full. Subscribers run
// sequentially on the goroutine that called Start.
type EventBus struct {
	ch chan envelope

	mu   sync.RWMutex
	subs map[Event][]func(any)

	hooks hooks
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches queued events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

// PublishAlertRaised queues an alert.raised event.
func (bus *EventBus) PublishAlertRaised(p AlertRaisedPayload) {
	bus.send(EventAlertRaised, p)
}

// SubscribeAlertRaised registers fn for alert.raised events.
func (bus *EventBus) SubscribeAlertRaised(fn func(AlertRaisedPayload)) {
	bus.subscribe(EventAlertRaised, func(p any) { fn(p.(AlertRaisedPayload)) })
}

// PublishConversationOpened queues a conversation.opened event.
func (bus *EventBus) PublishConversationOpened(p ConversationOpenedPayload) {
	bus.send(EventConversationOpened, p)
}

// SubscribeConversationOpened registers fn for conversation.opened events.
func (bus *EventBus) SubscribeConversationOpened(fn func(ConversationOpenedPayload)) {
	bus.subscribe(EventConversationOpened, func(p any) { fn(p.(ConversationOpenedPayload)) })
}

// PublishMessageSent queues a message.sent event.
func (bus *EventBus) PublishMessageSent(p MessageSentPayload) {
	bus.send(EventMessageSent, p)
}

// SubscribeMessageSent registers fn for message.sent events.
func (bus *EventBus) SubscribeMessageSent(fn func(MessageSentPayload)) {
	bus.subscribe(EventMessageSent, func(p any) { fn(p.(MessageSentPayload)) })
}

// PublishTuiStarted queues a tui.started event.
func (bus *EventBus) PublishTuiStarted(p TUIStartedPayload) {
	bus.send(EventTuiStarted, p)
}

// SubscribeTuiStarted registers fn for tui.started events.
func (bus *EventBus) SubscribeTuiStarted(fn func(TUIStartedPayload)) {
	bus.subscribe(EventTuiStarted, func(p any) { fn(p.(TUIStartedPayload)) })
}

// PublishTuiStopped queues a tui.stopped event.
func (bus *EventBus) PublishTuiStopped(p TUIStoppedPayload) {
	bus.send(EventTuiStopped, p)
}

// SubscribeTuiStopped registers fn for tui.stopped events.
func (bus *EventBus) SubscribeTuiStopped(fn func(TUIStoppedPayload)) {
	bus.subscribe(EventTuiStopped, func(p any) { fn(p.(TUIStoppedPayload)) })
}
