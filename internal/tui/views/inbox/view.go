// Package inbox renders the side panel: the viewer's conversations with
// unread markers, their pending friend requests and their friends.
package inbox

import (
	"fmt"
	"slices"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/colonyops/murmur/internal/core/feed"
	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/core/styles"
)

// Section is the focused half of the panel.
type Section int

const (
	SectionConversations Section = iota
	SectionRequests
)

// Selection is the item under the cursor. Exactly one field is set.
type Selection struct {
	Conversation *social.Conversation
	Request      *social.FriendRequest
}

// View is the inbox side panel.
type View struct {
	user string

	conversations []social.Conversation
	unread        map[string]social.UnreadConversation
	requests      []social.FriendRequest
	friends       []string

	section  Section
	cursor   int
	activeID string

	// inlineRequests renders the requests section below the conversations
	// instead of in a separate panel.
	inlineRequests bool

	width  int
	height int
}

// New creates an empty inbox for user.
func New(user string) *View {
	return &View{
		user:           user,
		unread:         make(map[string]social.UnreadConversation),
		inlineRequests: true,
	}
}

// SetInlineRequests chooses between rendering requests inside the panel and
// leaving them to RequestsView.
func (v *View) SetInlineRequests(inline bool) {
	v.inlineRequests = inline
}

// SetSize sets the panel dimensions.
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Width returns the panel width.
func (v *View) Width() int {
	return v.width
}

// SetConversations replaces the conversation list. It is expected in
// most-recent-first order.
func (v *View) SetConversations(list []social.Conversation) {
	v.conversations = list
	v.clampCursor()
}

// Conversations returns the conversation list.
func (v *View) Conversations() []social.Conversation {
	return v.conversations
}

// Has reports whether convID is in the conversation list.
func (v *View) Has(convID string) bool {
	return slices.ContainsFunc(v.conversations, func(c social.Conversation) bool { return c.ID == convID })
}

// Conversation looks up a listed conversation.
func (v *View) Conversation(convID string) (social.Conversation, bool) {
	i := slices.IndexFunc(v.conversations, func(c social.Conversation) bool { return c.ID == convID })
	if i < 0 {
		return social.Conversation{}, false
	}
	return v.conversations[i], true
}

// SetActive marks the open conversation.
func (v *View) SetActive(convID string) {
	v.activeID = convID
}

// ApplyUnread folds an unread-conversations feed event into the panel.
func (v *View) ApplyUnread(ev feed.Event[social.UnreadConversation]) {
	switch ev.Kind {
	case feed.KindAdded, feed.KindChanged:
		v.unread[ev.Key] = ev.Item
	case feed.KindRemoved:
		delete(v.unread, ev.Key)
	}
}

// ApplyRequest folds a friend-requests feed event into the panel.
func (v *View) ApplyRequest(ev feed.Event[social.FriendRequest]) {
	i := slices.IndexFunc(v.requests, func(r social.FriendRequest) bool { return r.ID == ev.Key })
	switch ev.Kind {
	case feed.KindAdded, feed.KindChanged:
		if i >= 0 {
			v.requests[i] = ev.Item
		} else {
			v.requests = append(v.requests, ev.Item)
		}
	case feed.KindRemoved:
		if i >= 0 {
			v.requests = slices.Delete(v.requests, i, i+1)
		}
	}
	v.clampCursor()
}

// SetFriends replaces the friends list.
func (v *View) SetFriends(friends []string) {
	v.friends = friends
}

// Friends returns the friends list.
func (v *View) Friends() []string {
	return v.friends
}

// UnreadCount is the number of conversations with unread messages.
func (v *View) UnreadCount() int {
	return len(v.unread)
}

// Unread returns the unread state of convID.
func (v *View) Unread(convID string) (social.UnreadConversation, bool) {
	u, ok := v.unread[convID]
	return u, ok
}

// RequestCount is the number of pending friend requests.
func (v *View) RequestCount() int {
	return len(v.requests)
}

// Requests returns the pending friend requests, oldest first.
func (v *View) Requests() []social.FriendRequest {
	return v.requests
}

// Section returns the focused section.
func (v *View) Section() Section {
	return v.section
}

// SetSection focuses s and resets the cursor.
func (v *View) SetSection(s Section) {
	v.section = s
	v.cursor = 0
}

// ToggleSection switches between conversations and requests.
func (v *View) ToggleSection() {
	if v.section == SectionConversations {
		v.SetSection(SectionRequests)
		return
	}
	v.SetSection(SectionConversations)
}

// MoveUp moves the cursor up one item.
func (v *View) MoveUp() {
	if v.cursor > 0 {
		v.cursor--
	}
}

// MoveDown moves the cursor down one item.
func (v *View) MoveDown() {
	if v.cursor < v.sectionLen()-1 {
		v.cursor++
	}
}

// Cursor returns the cursor index within the focused section.
func (v *View) Cursor() int {
	return v.cursor
}

// Selected returns the item under the cursor.
func (v *View) Selected() (Selection, bool) {
	switch v.section {
	case SectionRequests:
		if v.cursor < len(v.requests) {
			r := v.requests[v.cursor]
			return Selection{Request: &r}, true
		}
	default:
		if v.cursor < len(v.conversations) {
			c := v.conversations[v.cursor]
			return Selection{Conversation: &c}, true
		}
	}
	return Selection{}, false
}

func (v *View) sectionLen() int {
	if v.section == SectionRequests {
		return len(v.requests)
	}
	return len(v.conversations)
}

func (v *View) clampCursor() {
	if n := v.sectionLen(); v.cursor >= n {
		v.cursor = max(n-1, 0)
	}
}

// View renders the panel.
func (v *View) View() string {
	inner := max(v.width-styles.PanelStyle.GetHorizontalFrameSize(), 1)

	body := v.renderConversations(inner)
	if v.inlineRequests {
		body += "\n\n" + v.renderRequests(inner) + "\n\n" + v.renderFriends(inner)
	}
	return v.frame(body, v.width, v.height)
}

// RequestsView renders the requests and friends sections as a standalone
// panel.
func (v *View) RequestsView(width, height int) string {
	inner := max(width-styles.PanelStyle.GetHorizontalFrameSize(), 1)
	return v.frame(v.renderRequests(inner)+"\n\n"+v.renderFriends(inner), width, height)
}

func (v *View) frame(body string, width, height int) string {
	style := styles.PanelStyle.Width(width)
	if height > 0 {
		style = style.Height(height).MaxHeight(height)
	}
	return style.Render(body)
}

func (v *View) renderConversations(width int) string {
	lines := []string{v.sectionTitle(SectionConversations, styles.IconChat+" Conversations")}
	if len(v.conversations) == 0 {
		lines = append(lines, styles.EmptyStyle.Render("No conversations"))
	}
	for i, c := range v.conversations {
		lines = append(lines, v.renderConversation(c, v.section == SectionConversations && i == v.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderRequests(width int) string {
	lines := []string{v.sectionTitle(SectionRequests, styles.IconUserPlus+" Requests")}
	if len(v.requests) == 0 {
		lines = append(lines, styles.ErrorStyle.Render("No Requests"))
	}
	for i, r := range v.requests {
		lines = append(lines, v.renderRequest(r, v.section == SectionRequests && i == v.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderFriends(width int) string {
	lines := []string{styles.PanelTitleStyle.Foreground(styles.ColorMuted).Render(styles.IconUser + " Friends")}
	if len(v.friends) == 0 {
		lines = append(lines, styles.EmptyStyle.Render("No friends yet"))
	}
	for _, f := range v.friends {
		lines = append(lines, v.renderItem(f, "", false, width))
	}
	return strings.Join(lines, "\n")
}

func (v *View) sectionTitle(s Section, title string) string {
	if v.section == s {
		return styles.PanelTitleStyle.Render(title)
	}
	return styles.PanelTitleStyle.Foreground(styles.ColorMuted).Render(title)
}

func (v *View) renderConversation(c social.Conversation, selected bool, width int) string {
	label := c.DisplayTitle(v.user)
	if c.ID == v.activeID {
		label = "● " + label
	}

	var suffix string
	if u, ok := v.unread[c.ID]; ok {
		suffix = styles.ListUnreadStyle.Render(fmt.Sprintf(" (%d)", u.Unread))
	} else if !c.LastMessageAt.IsZero() {
		suffix = styles.ListSecondaryStyle.Render(" " + humanize.Time(c.LastMessageAt))
	}

	return v.renderItem(label, suffix, selected, width)
}

func (v *View) renderRequest(r social.FriendRequest, selected bool, width int) string {
	suffix := styles.ListSecondaryStyle.Render(" " + humanize.Time(r.CreatedAt))
	return v.renderItem(r.From, suffix, selected, width)
}

func (v *View) renderItem(label, suffix string, selected bool, width int) string {
	style := styles.ListItemStyle
	if selected {
		style = styles.ListSelectedStyle
	}
	avail := max(width-style.GetHorizontalFrameSize()-lipgloss.Width(suffix), 1)
	return style.Render(ansi.Truncate(label, avail, "…") + suffix)
}
