package tui

import (
	"context"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/murmur/internal/core/alert"
	"github.com/colonyops/murmur/internal/core/config"
	"github.com/colonyops/murmur/internal/core/eventbus"
	"github.com/colonyops/murmur/internal/core/feed"
	"github.com/colonyops/murmur/internal/core/layout"
	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/murmur"
	"github.com/colonyops/murmur/internal/tui/views/conversation"
	"github.com/colonyops/murmur/internal/tui/views/inbox"
)

const (
	headerHeight   = 1
	footerHeight   = 1
	titleHeight    = 1
	composerHeight = 3

	inboxWidth     = 32
	secondaryWidth = 30

	defaultCellWidth = 8
)

// focus is the pane receiving key input.
type focus int

const (
	focusConversation focus = iota
	focusInbox
	focusComposer
)

// composeMode selects what the composer submits.
type composeMode int

const (
	composeMessage composeMode = iota
	composeConversation
	composeFriendRequest
)

// Deps holds the services the TUI reads from and writes to.
type Deps struct {
	Config        *config.Config
	Conversations *murmur.ConversationService
	Messages      *murmur.MessageService
	Requests      *murmur.RequestService
	Feeds         Feeds
	Bus           *eventbus.EventBus
}

// Opts configures the TUI behavior.
type Opts struct {
	User string
}

// Model is the root bubbletea model.
type Model struct {
	cfg           *config.Config
	conversations *murmur.ConversationService
	messages      *murmur.MessageService
	requests      *murmur.RequestService
	feeds         Feeds
	bus           *eventbus.EventBus
	logger        zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	user string
	keys keyMap

	width     int
	height    int
	cellWidth int
	tracker   *layout.Tracker
	layout    layout.Layout
	showList  bool

	focus    focus
	compose  composeMode
	composer textinput.Model

	conversation *conversation.View
	inbox        *inbox.View

	unreadAlerts  *alert.Notifier
	requestAlerts *alert.Notifier
	unreadHandle  *alert.Handle
	requestHandle *alert.Handle

	unreadSub   feed.Subscription[social.UnreadConversation]
	requestSub  feed.Subscription[social.FriendRequest]
	messageSub  feed.Subscription[social.Message]
	unreadGen   uint64
	requestGen  uint64
	messageGen  uint64
	pendingOpen string

	status   string
	err      error
	quitting bool
}

// New creates the root model.
func New(deps Deps, opts Opts) Model {
	cfg := deps.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	cellWidth := cfg.Layout.CellWidthPx
	if cellWidth <= 0 {
		cellWidth = defaultCellWidth
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = social.MaxBodySize

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		cfg:           cfg,
		conversations: deps.Conversations,
		messages:      deps.Messages,
		requests:      deps.Requests,
		feeds:         deps.Feeds,
		bus:           deps.Bus,
		logger:        log.With().Str("cmp", "tui").Logger(),
		ctx:           ctx,
		cancel:        cancel,
		user:          opts.User,
		keys:          defaultKeyMap(),
		cellWidth:     cellWidth,
		tracker:       layout.NewTracker(cfg.Layout.Breakpoints()),
		layout:        layout.Layout{HideSecondaryPanel: true},
		focus:         focusInbox,
		composer:      ti,
		conversation: conversation.New(conversation.Options{
			User:       opts.User,
			Threshold:  cfg.Scroll.Threshold,
			CellHeight: cfg.Layout.CellHeightPx,
			Markdown:   cfg.TUI.Markdown,
		}),
		inbox:         inbox.New(opts.User),
		unreadAlerts:  alert.New(CategoryUnread),
		requestAlerts: alert.New(CategoryRequests),
		unreadGen:     1,
		requestGen:    1,
	}
}

// Init subscribes to the header feeds and loads the conversation list.
func (m Model) Init() tea.Cmd {
	if m.bus != nil {
		m.bus.PublishTuiStarted(eventbus.TUIStartedPayload{})
	}

	cmds := []tea.Cmd{m.loadConversations(), m.loadFriends()}
	if m.feeds != nil {
		cmds = append(cmds,
			subscribeFeed(m.ctx, m.feeds.Unread(), feed.Filter{ID: m.user}, m.unreadGen),
			subscribeFeed(m.ctx, m.feeds.Requests(), feed.Filter{ID: m.user}, m.requestGen),
		)
	}
	return tea.Batch(cmds...)
}

// Update routes messages to their handlers.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case tea.MouseWheelMsg:
		return m, m.conversation.Update(msg)
	case BellMsg:
		return m.handleBell(msg)

	// Live feeds
	case feedSubscribedMsg[social.UnreadConversation]:
		return m.handleUnreadSubscribed(msg)
	case feedEventMsg[social.UnreadConversation]:
		return m.handleUnreadEvent(msg)
	case feedSubscribedMsg[social.FriendRequest]:
		return m.handleRequestSubscribed(msg)
	case feedEventMsg[social.FriendRequest]:
		return m.handleRequestEvent(msg)
	case feedSubscribedMsg[social.Message]:
		return m.handleMessageSubscribed(msg)
	case feedEventMsg[social.Message]:
		return m.handleMessageEvent(msg)

	// Store results
	case conversationsLoadedMsg:
		return m.handleConversationsLoaded(msg)
	case conversationOpenedMsg:
		return m.handleConversationOpened(msg)
	case newestLoadedMsg:
		return m.handleNewestLoaded(msg)
	case messageSentMsg:
		return m.handleMessageSent(msg)
	case conversationStartedMsg:
		return m.handleConversationStarted(msg)
	case requestSentMsg:
		return m.handleRequestSent(msg)
	case requestRespondedMsg:
		return m.handleRequestResponded(msg)
	case friendsLoadedMsg:
		return m.handleFriendsLoaded(msg)
	}

	if m.focus == focusComposer {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Close releases every live subscription and alert handle. It is safe to
// call more than once.
func (m Model) Close() {
	m.cancel()
	for _, c := range []func() error{m.closeUnread, m.closeRequests, m.closeMessages} {
		_ = c()
	}
	m.unreadAlerts.DetachAll()
	m.requestAlerts.DetachAll()
}

func (m Model) closeUnread() error {
	if m.unreadSub == nil {
		return nil
	}
	return m.unreadSub.Close()
}

func (m Model) closeRequests() error {
	if m.requestSub == nil {
		return nil
	}
	return m.requestSub.Close()
}

func (m Model) closeMessages() error {
	if m.messageSub == nil {
		return nil
	}
	return m.messageSub.Close()
}

// quit sets the quitting flag and emits tui.stopped.
func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	if m.bus != nil {
		m.bus.PublishTuiStopped(eventbus.TUIStoppedPayload{})
	}
	return m, tea.Quit
}

// UnreadCount is the inbox badge value.
func (m Model) UnreadCount() int {
	return m.inbox.UnreadCount()
}

// RequestCount is the requests badge value.
func (m Model) RequestCount() int {
	return m.inbox.RequestCount()
}

// Layout returns the current responsive layout.
func (m Model) Layout() layout.Layout {
	return m.layout
}

// OpenConversationID returns the conversation in the conversation pane.
func (m Model) OpenConversationID() string {
	return m.conversation.ConversationID()
}
