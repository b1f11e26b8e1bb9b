package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/murmur/internal/core/social"
)

type conversationsLoadedMsg struct {
	conversations []social.Conversation
	err           error
}

type conversationOpenedMsg struct {
	conversation social.Conversation
	err          error
}

type newestLoadedMsg struct {
	conversation social.Conversation
	err          error
}

type messageSentMsg struct {
	message social.Message
	err     error
}

type conversationStartedMsg struct {
	conversation social.Conversation
	err          error
}

type requestSentMsg struct {
	request social.FriendRequest
	err     error
}

type requestRespondedMsg struct {
	request  social.FriendRequest
	accepted bool
	err      error
}

type friendsLoadedMsg struct {
	friends []string
	err     error
}

func (m Model) loadFriends() tea.Cmd {
	if m.requests == nil {
		return nil
	}
	svc, ctx, user := m.requests, m.ctx, m.user
	return func() tea.Msg {
		friends, err := svc.Friends(ctx, user)
		return friendsLoadedMsg{friends: friends, err: err}
	}
}

func (m Model) loadConversations() tea.Cmd {
	if m.conversations == nil {
		return nil
	}
	svc, ctx, user := m.conversations, m.ctx, m.user
	return func() tea.Msg {
		list, err := svc.ListFor(ctx, user)
		return conversationsLoadedMsg{conversations: list, err: err}
	}
}

func (m Model) openConversation(id string) tea.Cmd {
	if m.conversations == nil {
		return nil
	}
	svc, ctx, user := m.conversations, m.ctx, m.user
	return func() tea.Msg {
		c, err := svc.Open(ctx, id, user)
		return conversationOpenedMsg{conversation: c, err: err}
	}
}

func (m Model) loadNewest() tea.Cmd {
	if m.conversations == nil {
		return nil
	}
	svc, ctx, user := m.conversations, m.ctx, m.user
	return func() tea.Msg {
		c, err := svc.Newest(ctx, user)
		return newestLoadedMsg{conversation: c, err: err}
	}
}

func (m Model) sendMessage(conversationID, body string) tea.Cmd {
	if m.messages == nil {
		return nil
	}
	svc, ctx, user := m.messages, m.ctx, m.user
	return func() tea.Msg {
		msg, err := svc.Send(ctx, conversationID, user, body)
		return messageSentMsg{message: msg, err: err}
	}
}

func (m Model) startConversation(input string) tea.Cmd {
	if m.conversations == nil {
		return nil
	}
	svc, ctx, user := m.conversations, m.ctx, m.user
	others := splitUsers(input)
	return func() tea.Msg {
		c, err := svc.Start(ctx, user, "", others)
		return conversationStartedMsg{conversation: c, err: err}
	}
}

func (m Model) sendRequest(to string) tea.Cmd {
	if m.requests == nil {
		return nil
	}
	svc, ctx, user := m.requests, m.ctx, m.user
	to = strings.TrimSpace(to)
	return func() tea.Msg {
		r, err := svc.Send(ctx, user, to)
		return requestSentMsg{request: r, err: err}
	}
}

func (m Model) respondRequest(r social.FriendRequest, accept bool) tea.Cmd {
	if m.requests == nil {
		return nil
	}
	svc, ctx := m.requests, m.ctx
	return func() tea.Msg {
		var err error
		if accept {
			err = svc.Accept(ctx, r.ID)
		} else {
			err = svc.Decline(ctx, r.ID)
		}
		return requestRespondedMsg{request: r, accepted: accept, err: err}
	}
}

// splitUsers parses a comma or space separated list of usernames.
func splitUsers(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimPrefix(strings.TrimSpace(f), "@"); f != "" {
			out = append(out, f)
		}
	}
	return out
}
