package tui

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/murmur/internal/core/alert"
	"github.com/colonyops/murmur/internal/core/eventbus"
	"github.com/colonyops/murmur/internal/core/feed"
	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/tui/views/inbox"
)

// handleWindowSize reclassifies the layout and resizes every pane.
func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	if msg.Width <= 0 {
		return m, nil
	}

	m.width = msg.Width
	m.height = msg.Height

	l, changed := m.tracker.Resize(msg.Width * m.cellWidth)
	if changed {
		m.logger.Debug().
			Bool("mobile", l.IsMobile).
			Bool("hide_secondary", l.HideSecondaryPanel).
			Int("columns", msg.Width).
			Msg("layout changed")

		if l.IsMobile && !m.layout.IsMobile {
			m.showList = m.conversation.ConversationID() == "" || m.focus == focusInbox
		}
	}
	m.layout = l
	m.resize()
	return m, nil
}

// resize distributes the window between the visible panes.
func (m *Model) resize() {
	bodyHeight := max(m.height-headerHeight-footerHeight, 0)
	listW, centerW, secondaryW := m.paneWidths()

	m.inbox.SetSize(listW, bodyHeight)
	m.inbox.SetInlineRequests(secondaryW == 0)

	// The pane indents the history by one column; the composer box spends
	// four on its frame and up to ten on the prompt.
	m.conversation.SetSize(max(centerW-1, 1), max(bodyHeight-titleHeight-composerHeight, 1))
	m.composer.SetWidth(max(centerW-16, 1))
}

// paneWidths returns the widths of the conversation list, the conversation
// pane and the secondary (requests) panel. A zero width means hidden.
func (m Model) paneWidths() (list, center, secondary int) {
	if m.layout.IsMobile {
		if m.showList {
			return m.width, 0, 0
		}
		return 0, m.width, 0
	}

	list = min(inboxWidth, m.width/3)
	if !m.layout.HideSecondaryPanel {
		secondary = secondaryWidth
	}
	center = max(m.width-list-secondary, 0)
	return list, center, secondary
}

// handleKey dispatches key presses by focus.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.focus == focusComposer {
		return m.handleComposerKey(msg)
	}

	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.SwitchFocus):
		return m.switchFocus(), nil
	case key.Matches(msg, m.keys.Inbox):
		return m.handleInboxShortcut()
	case key.Matches(msg, m.keys.Requests):
		return m.showRequests(), nil
	case key.Matches(msg, m.keys.NewConvo):
		return m.startComposer(composeConversation)
	case key.Matches(msg, m.keys.AddFriend):
		return m.startComposer(composeFriendRequest)
	}

	if m.focus == focusInbox {
		return m.handleInboxKey(msg)
	}
	return m.handleConversationKey(msg)
}

func (m Model) handleInboxKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.inbox.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.inbox.MoveDown()
	case key.Matches(msg, m.keys.Open):
		sel, ok := m.inbox.Selected()
		if ok && sel.Conversation != nil {
			return m.requestOpen(sel.Conversation.ID)
		}
	case key.Matches(msg, m.keys.Accept), key.Matches(msg, m.keys.Decline):
		sel, ok := m.inbox.Selected()
		if ok && sel.Request != nil {
			return m, m.respondRequest(*sel.Request, key.Matches(msg, m.keys.Accept))
		}
	case key.Matches(msg, m.keys.Back):
		if m.inbox.Section() == inbox.SectionRequests {
			m.inbox.SetSection(inbox.SectionConversations)
			return m, nil
		}
		if m.layout.IsMobile && m.conversation.ConversationID() != "" {
			m.showList = false
			m.focus = focusConversation
			m.resize()
		}
	}
	return m, nil
}

func (m Model) handleConversationKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.conversation.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.conversation.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.conversation.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.conversation.PageDown()
	case key.Matches(msg, m.keys.Bottom):
		m.conversation.GotoBottom()
	case key.Matches(msg, m.keys.Compose):
		return m.startComposer(composeMessage)
	case key.Matches(msg, m.keys.Back):
		if m.layout.IsMobile {
			m.showList = true
			m.focus = focusInbox
			m.resize()
		}
	}
	return m, nil
}

func (m Model) handleComposerKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ComposerExit):
		return m.stopComposer(), nil
	case key.Matches(msg, m.keys.ComposerSend):
		return m.submitComposer()
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// switchFocus toggles between the conversation list and the open
// conversation.
func (m Model) switchFocus() Model {
	if m.focus == focusInbox {
		if m.conversation.ConversationID() == "" {
			return m
		}
		m.focus = focusConversation
		if m.layout.IsMobile {
			m.showList = false
			m.resize()
		}
		return m
	}

	m.focus = focusInbox
	if m.layout.IsMobile {
		m.showList = true
		m.resize()
	}
	return m
}

// handleInboxShortcut follows the header inbox link: the conversation list
// on mobile, otherwise the open or newest conversation.
func (m Model) handleInboxShortcut() (tea.Model, tea.Cmd) {
	m.inbox.SetSection(inbox.SectionConversations)

	if m.layout.IsMobile {
		m.showList = true
		m.focus = focusInbox
		m.resize()
		return m, nil
	}

	if m.conversation.ConversationID() != "" {
		m.focus = focusConversation
		return m, nil
	}
	return m, m.loadNewest()
}

func (m Model) showRequests() Model {
	m.inbox.SetSection(inbox.SectionRequests)
	m.focus = focusInbox
	if m.layout.IsMobile {
		m.showList = true
		m.resize()
	}
	return m
}

func (m Model) startComposer(mode composeMode) (tea.Model, tea.Cmd) {
	if mode == composeMessage && m.conversation.ConversationID() == "" {
		m.status = "Open a conversation first"
		return m, nil
	}

	m.compose = mode
	m.focus = focusComposer
	m.composer.Reset()
	switch mode {
	case composeConversation:
		m.composer.Prompt = "to: "
		m.composer.Placeholder = "usernames, comma separated"
	case composeFriendRequest:
		m.composer.Prompt = "friend: "
		m.composer.Placeholder = "username"
	default:
		m.composer.Prompt = "> "
		m.composer.Placeholder = "Type a message..."
		m.conversation.GotoBottom()
	}
	return m, m.composer.Focus()
}

func (m Model) stopComposer() Model {
	m.composer.Blur()
	m.composer.Reset()
	m.compose = composeMessage
	m.composer.Prompt = "> "
	m.composer.Placeholder = "Type a message..."

	if m.conversation.ConversationID() != "" {
		m.focus = focusConversation
	} else {
		m.focus = focusInbox
	}
	return m
}

func (m Model) submitComposer() (tea.Model, tea.Cmd) {
	value := m.composer.Value()
	if strings.TrimSpace(value) == "" {
		return m, nil
	}

	switch m.compose {
	case composeConversation:
		m = m.stopComposer()
		return m, m.startConversation(value)
	case composeFriendRequest:
		m = m.stopComposer()
		return m, m.sendRequest(value)
	}

	convID := m.conversation.ConversationID()
	m.composer.Reset()
	m.conversation.GotoBottom()
	return m, m.sendMessage(convID, value)
}

// requestOpen asks the service to open id. The pane switches once the
// conversation has been loaded.
func (m Model) requestOpen(id string) (tea.Model, tea.Cmd) {
	m.pendingOpen = id
	return m, m.openConversation(id)
}

func (m Model) handleConversationOpened(msg conversationOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.setError("open conversation", msg.err), nil
	}
	c := msg.conversation
	if c.ID != m.pendingOpen {
		return m, nil
	}
	m.pendingOpen = ""

	closeCmd := closeSub(m.messageSub)
	m.messageSub = nil
	m.messageGen++

	d := m.conversation.Open(c.ID, c.DisplayTitle(m.user))
	m.logger.Debug().
		Str("conversation_id", c.ID).
		Str("reason", string(d.Reason)).
		Msg("conversation opened")

	m.inbox.SetActive(c.ID)
	m.focus = focusConversation
	if m.layout.IsMobile {
		m.showList = false
	}
	m.resize()

	if m.feeds == nil {
		return m, closeCmd
	}
	filter := feed.Filter{ID: c.ID, Limit: m.cfg.Feeds.MessageLimit}
	return m, tea.Batch(closeCmd, subscribeFeed(m.ctx, m.feeds.Messages(), filter, m.messageGen))
}

func (m Model) handleNewestLoaded(msg newestLoadedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, social.ErrNotFound) {
		m.status = "No conversations yet. Press n to start one"
		return m, nil
	}
	if msg.err != nil {
		return m.setError("load newest conversation", msg.err), nil
	}
	return m.requestOpen(msg.conversation.ID)
}

func (m Model) handleConversationsLoaded(msg conversationsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.setError("load conversations", msg.err), nil
	}
	m.inbox.SetConversations(msg.conversations)
	return m, nil
}

func (m Model) handleMessageSent(msg messageSentMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.setError("send message", msg.err), nil
	}
	m.status = ""
	return m, m.loadConversations()
}

func (m Model) handleConversationStarted(msg conversationStartedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.setError("start conversation", msg.err), nil
	}
	m.status = "Started conversation with " + msg.conversation.DisplayTitle(m.user)
	model, cmd := m.requestOpen(msg.conversation.ID)
	return model, tea.Batch(cmd, m.loadConversations())
}

func (m Model) handleRequestSent(msg requestSentMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.setError("send friend request", msg.err), nil
	}
	m.status = "Friend request sent to " + msg.request.To
	return m, nil
}

func (m Model) handleRequestResponded(msg requestRespondedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.setError("respond to friend request", msg.err), nil
	}

	m.inbox.ApplyRequest(feed.Event[social.FriendRequest]{Kind: feed.KindRemoved, Key: msg.request.ID})
	if !msg.accepted {
		m.status = "Declined request from " + msg.request.From
		return m, nil
	}
	m.status = "You and " + msg.request.From + " are now friends"
	return m, m.loadFriends()
}

func (m Model) handleFriendsLoaded(msg friendsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.setError("load friends", msg.err), nil
	}
	m.inbox.SetFriends(msg.friends)
	return m, nil
}

// Live feed handlers. Each subscription carries a generation; events from a
// superseded subscription are dropped and its subscription closed. A header
// feed that closes while the TUI is running is replaced under the next
// generation.

func (m Model) handleUnreadSubscribed(msg feedSubscribedMsg[social.UnreadConversation]) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.setError("subscribe unread conversations", msg.err), nil
	}
	if msg.gen != m.unreadGen {
		return m, closeSub(msg.sub)
	}

	m.unreadSub = msg.sub
	m.unreadHandle = m.unreadAlerts.Attach(feedUnread)
	return m, listenFeed(msg.sub, msg.gen)
}

func (m Model) handleUnreadEvent(msg feedEventMsg[social.UnreadConversation]) (tea.Model, tea.Cmd) {
	if msg.gen != m.unreadGen {
		return m, nil
	}
	if msg.closed {
		m.unreadSub = nil
		if m.unreadHandle != nil {
			m.unreadHandle.Detach()
			m.unreadHandle = nil
		}
		if m.feeds == nil || m.ctx.Err() != nil {
			return m, nil
		}
		m.unreadGen++
		m.logger.Debug().Uint64("gen", m.unreadGen).Msg("unread feed closed, resubscribing")
		return m, resubscribeFeed(m.ctx, m.feeds.Unread(), feed.Filter{ID: m.user}, m.unreadGen)
	}

	ev := msg.event
	m.inbox.ApplyUnread(ev)

	cmds := []tea.Cmd{listenFeed(m.unreadSub, msg.gen)}
	switch ev.Kind {
	case feed.KindReady:
		m.markReady(m.unreadHandle)
	case feed.KindAdded:
		// The open conversation is being read as messages arrive.
		m.notify(m.unreadHandle, CategoryUnread, ev.Key, ev.Key == m.conversation.ConversationID())
		cmds = append(cmds, m.loadConversations())
	case feed.KindChanged:
		cmds = append(cmds, m.loadConversations())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleRequestSubscribed(msg feedSubscribedMsg[social.FriendRequest]) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.setError("subscribe friend requests", msg.err), nil
	}
	if msg.gen != m.requestGen {
		return m, closeSub(msg.sub)
	}

	m.requestSub = msg.sub
	m.requestHandle = m.requestAlerts.Attach(feedRequests)
	return m, listenFeed(msg.sub, msg.gen)
}

func (m Model) handleRequestEvent(msg feedEventMsg[social.FriendRequest]) (tea.Model, tea.Cmd) {
	if msg.gen != m.requestGen {
		return m, nil
	}
	if msg.closed {
		m.requestSub = nil
		if m.requestHandle != nil {
			m.requestHandle.Detach()
			m.requestHandle = nil
		}
		if m.feeds == nil || m.ctx.Err() != nil {
			return m, nil
		}
		m.requestGen++
		m.logger.Debug().Uint64("gen", m.requestGen).Msg("request feed closed, resubscribing")
		return m, resubscribeFeed(m.ctx, m.feeds.Requests(), feed.Filter{ID: m.user}, m.requestGen)
	}

	ev := msg.event
	m.inbox.ApplyRequest(ev)

	switch ev.Kind {
	case feed.KindReady:
		m.markReady(m.requestHandle)
	case feed.KindAdded:
		m.notify(m.requestHandle, CategoryRequests, ev.Key, false)
	}
	return m, listenFeed(m.requestSub, msg.gen)
}

func (m Model) handleMessageSubscribed(msg feedSubscribedMsg[social.Message]) (tea.Model, tea.Cmd) {
	if msg.gen != m.messageGen {
		return m, closeSub(msg.sub)
	}
	if msg.err != nil {
		return m.setError("subscribe messages", msg.err), nil
	}

	m.messageSub = msg.sub
	return m, listenFeed(msg.sub, msg.gen)
}

func (m Model) handleMessageEvent(msg feedEventMsg[social.Message]) (tea.Model, tea.Cmd) {
	if msg.gen != m.messageGen {
		return m, nil
	}
	if msg.closed {
		m.messageSub = nil
		return m, nil
	}

	ev := msg.event
	d := m.conversation.Apply(ev)
	m.logger.Trace().
		Str("kind", string(ev.Kind)).
		Bool("scroll", d.ScrollToBottom).
		Str("reason", string(d.Reason)).
		Msg("conversation content changed")

	// Messages arriving in the open conversation are read on arrival.
	if ev.Kind == feed.KindAdded && m.conversation.Ready() && !ev.Item.IsFrom(m.user) && m.bus != nil {
		m.bus.PublishConversationOpened(eventbus.ConversationOpenedPayload{
			ConversationID: m.conversation.ConversationID(),
			User:           m.user,
			At:             ev.Item.CreatedAt,
		})
	}

	return m, listenFeed(m.messageSub, msg.gen)
}

// markReady moves a tracked feed out of its loading state.
func (m Model) markReady(h *alert.Handle) {
	if h == nil {
		return
	}
	if err := h.Ready(); err != nil {
		m.logger.Warn().Err(err).Str("feed", h.FeedID()).Msg("ready on detached alert handle")
	}
}

// notify records an added item and raises an alert when the notifier says
// so. quiet records the item without alerting.
func (m Model) notify(h *alert.Handle, category, itemKey string, quiet bool) {
	if h == nil {
		return
	}

	d, err := h.Added()
	if err != nil {
		m.logger.Warn().Err(err).Str("feed", h.FeedID()).Msg("added on detached alert handle")
		return
	}
	if !d.ShouldNotify || quiet || m.bus == nil {
		return
	}

	m.bus.PublishAlertRaised(eventbus.AlertRaisedPayload{
		Category: category,
		FeedID:   h.FeedID(),
		ItemKey:  itemKey,
		Reason:   d.Reason,
	})
}

func (m Model) setError(action string, err error) Model {
	m.logger.Error().Err(err).Str("action", action).Msg("tui action failed")
	m.err = fmt.Errorf("%s: %w", action, err)
	m.status = ""
	return m
}
