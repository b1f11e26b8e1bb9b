package tui

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/murmur/internal/core/styles"
	"github.com/colonyops/murmur/internal/tui/views/inbox"
)

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

func (m Model) render() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderBody(),
		m.renderFooter(),
	)
}

// renderHeader renders the top bar: brand, inbox and requests badges on the
// left, the username on the right.
func (m Model) renderHeader() string {
	left := strings.Join([]string{
		styles.BrandStyle.Render("murmur"),
		renderBadge(styles.IconInbox, m.inbox.UnreadCount()),
		renderBadge(styles.IconUser, m.inbox.RequestCount()),
	}, "  ")
	right := styles.UserStyle.Render(m.user)

	width := max(m.width, lipgloss.Width(left)+lipgloss.Width(right)+4)
	inner := width - styles.HeaderStyle.GetHorizontalFrameSize()
	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return styles.HeaderStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderBadge renders an icon followed by its count. A zero count renders
// the icon alone.
func renderBadge(icon string, count int) string {
	if count == 0 {
		return icon
	}
	return icon + " " + styles.BadgeStyle.Render(strconv.Itoa(count))
}

func (m Model) renderBody() string {
	listW, centerW, secondaryW := m.paneWidths()
	bodyHeight := max(m.height-headerHeight-footerHeight, 0)

	var panes []string
	if listW > 0 {
		panes = append(panes, m.inbox.View())
	}
	if centerW > 0 {
		panes = append(panes, m.renderConversationPane(centerW))
	}
	if secondaryW > 0 {
		panes = append(panes, m.inbox.RequestsView(secondaryW, bodyHeight))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func (m Model) renderConversationPane(width int) string {
	title := styles.EmptyStyle.Render("Select a conversation")
	if m.conversation.ConversationID() != "" {
		title = styles.ConversationTitleStyle.Render(styles.IconChat + " " + m.conversation.Title())
	}

	composerStyle := styles.ComposerStyle
	if m.focus == focusComposer {
		composerStyle = styles.ComposerFocusedStyle
	}
	composer := composerStyle.Width(max(width-2, 1)).Render(m.composer.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingLeft(1).Render(title),
		lipgloss.NewStyle().PaddingLeft(1).Render(m.conversation.View()),
		composer,
	)
}

// renderFooter shows an error, a status line or the key help, in that order
// of precedence.
func (m Model) renderFooter() string {
	switch {
	case m.err != nil:
		return styles.ErrorStyle.Render(m.err.Error())
	case m.status != "":
		return styles.StatusStyle.Render(m.status)
	default:
		requests := m.inbox.Section() == inbox.SectionRequests
		return styles.HelpStyle.Render(renderHelp(m.keys.helpFor(m.focus, requests)))
	}
}
