// Package conversation renders the message history of the open conversation
// and keeps it pinned to the newest message while the reader sits at the
// bottom.
package conversation

import (
	"slices"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/murmur/internal/core/feed"
	"github.com/colonyops/murmur/internal/core/scroll"
	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/core/styles"
)

const defaultCellHeight = 16

// Options configures a View.
type Options struct {
	// User is the viewer; their messages are styled as their own.
	User string
	// Threshold is the bottom tolerance in pixels, see scroll.DefaultThreshold.
	Threshold float64
	// CellHeight converts terminal rows into pixels for the scroll anchor.
	CellHeight int
	// Markdown renders message bodies with glamour.
	Markdown bool
}

// View is the scrollable message history of a single conversation.
type View struct {
	user       string
	viewport   viewport.Model
	anchor     *scroll.Anchor
	cellHeight float64

	markdown      bool
	renderer      *glamour.TermRenderer
	rendererWidth int

	convID   string
	title    string
	messages []social.Message
	ready    bool
}

// New creates an empty View with no conversation open.
func New(opts Options) *View {
	cellHeight := opts.CellHeight
	if cellHeight <= 0 {
		cellHeight = defaultCellHeight
	}

	var anchorOpts []scroll.Option
	if opts.Threshold != 0 {
		anchorOpts = append(anchorOpts, scroll.WithThreshold(opts.Threshold))
	}

	vp := viewport.New()
	vp.MouseWheelEnabled = true

	return &View{
		user:       opts.User,
		viewport:   vp,
		anchor:     scroll.New(anchorOpts...),
		cellHeight: float64(cellHeight),
		markdown:   opts.Markdown,
	}
}

// Open switches the view to convID. The history starts empty and not ready;
// it fills from the conversation's message feed.
func (v *View) Open(convID, title string) scroll.Decision {
	v.convID = convID
	v.title = title
	v.messages = nil
	v.ready = false
	return v.refresh()
}

// Close clears the view.
func (v *View) Close() {
	v.convID = ""
	v.title = ""
	v.messages = nil
	v.ready = false
	v.anchor.Reset()
	v.viewport.SetContent("")
	v.viewport.GotoTop()
}

// ConversationID returns the open conversation, or "" when none is open.
func (v *View) ConversationID() string {
	return v.convID
}

// Title returns the display title of the open conversation.
func (v *View) Title() string {
	return v.title
}

// Ready reports whether the conversation's initial history has loaded.
func (v *View) Ready() bool {
	return v.ready
}

// Messages returns the loaded history in chronological order.
func (v *View) Messages() []social.Message {
	return v.messages
}

// Apply folds a message feed event into the history and returns the
// auto-scroll decision taken for the resulting content change.
func (v *View) Apply(ev feed.Event[social.Message]) scroll.Decision {
	switch ev.Kind {
	case feed.KindAdded:
		v.insert(ev.Item)
	case feed.KindChanged:
		if i := v.indexOf(ev.Key); i >= 0 {
			v.messages[i] = ev.Item
		}
	case feed.KindRemoved:
		if i := v.indexOf(ev.Key); i >= 0 {
			v.messages = slices.Delete(v.messages, i, i+1)
		}
	case feed.KindReady:
		v.ready = true
	}
	return v.refresh()
}

// SetSize resizes the viewport. A reader who was at the bottom stays there.
func (v *View) SetSize(width, height int) {
	atBottom := v.anchor.Distance() > v.anchor.Threshold()

	v.viewport.SetWidth(max(width, 0))
	v.viewport.SetHeight(max(height, 0))
	v.viewport.SetContent(v.render())

	if atBottom {
		v.viewport.GotoBottom()
	}
	v.recordScroll()
}

// GotoBottom jumps to the newest message.
func (v *View) GotoBottom() {
	v.viewport.GotoBottom()
	v.recordScroll()
}

// ScrollUp moves the view n lines towards older messages.
func (v *View) ScrollUp(n int) {
	v.viewport.ScrollUp(n)
	v.recordScroll()
}

// ScrollDown moves the view n lines towards newer messages.
func (v *View) ScrollDown(n int) {
	v.viewport.ScrollDown(n)
	v.recordScroll()
}

// PageUp moves the view one page towards older messages.
func (v *View) PageUp() {
	v.viewport.PageUp()
	v.recordScroll()
}

// PageDown moves the view one page towards newer messages.
func (v *View) PageDown() {
	v.viewport.PageDown()
	v.recordScroll()
}

// Update forwards mouse wheel input to the viewport.
func (v *View) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.MouseWheelMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	v.recordScroll()
	return cmd
}

// Snapshot reports the viewport geometry in pixels.
func (v *View) Snapshot() scroll.Viewport {
	return scroll.Viewport{
		ScrollOffset:   float64(v.viewport.YOffset()) * v.cellHeight,
		ViewportHeight: float64(v.viewport.Height()) * v.cellHeight,
		ContentHeight:  float64(v.viewport.TotalLineCount()) * v.cellHeight,
	}
}

// AtBottom reports whether the newest message is in view.
func (v *View) AtBottom() bool {
	return v.viewport.AtBottom() || v.viewport.TotalLineCount() <= v.viewport.Height()
}

// View renders the viewport.
func (v *View) View() string {
	return v.viewport.View()
}

// refresh re-renders the history and asks the anchor whether to follow it.
// The recorded scroll position is left alone unless the view actually
// moves, so content arriving below the fold does not count as the reader
// scrolling away.
func (v *View) refresh() scroll.Decision {
	v.viewport.SetContent(v.render())
	if v.convID == "" {
		return scroll.Decision{}
	}

	d := v.anchor.OnContentChanged(v.convID, v.ready)
	if d.ScrollToBottom {
		v.GotoBottom()
	}
	return d
}

func (v *View) recordScroll() {
	v.anchor.OnScroll(v.Snapshot())
}

func (v *View) insert(m social.Message) {
	if i := v.indexOf(m.ID); i >= 0 {
		v.messages[i] = m
		return
	}
	i := len(v.messages)
	for i > 0 && v.messages[i-1].CreatedAt.After(m.CreatedAt) {
		i--
	}
	v.messages = slices.Insert(v.messages, i, m)
}

func (v *View) indexOf(id string) int {
	return slices.IndexFunc(v.messages, func(m social.Message) bool { return m.ID == id })
}

func (v *View) render() string {
	if v.convID == "" {
		return styles.EmptyStyle.Render("No conversation selected")
	}
	if len(v.messages) == 0 {
		if !v.ready {
			return styles.EmptyStyle.Render("Loading messages...")
		}
		return styles.EmptyStyle.Render("No messages yet. Say hello!")
	}

	width := v.viewport.Width()
	var b strings.Builder
	for i, m := range v.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.renderHeader(m))
		b.WriteString("\n")
		b.WriteString(v.renderBody(m.Body, width))
	}
	return b.String()
}

func (v *View) renderHeader(m social.Message) string {
	sender := styles.SenderStyle(m.Sender).Render(m.Sender)
	if m.IsFrom(v.user) {
		sender = styles.OwnSenderStyle.Render(m.Sender)
	}
	return sender + " " + styles.TimeStyle.Render(humanize.Time(m.CreatedAt))
}

func (v *View) renderBody(body string, width int) string {
	if v.markdown && width > 0 {
		if out, ok := v.renderMarkdown(body, width); ok {
			return out
		}
	}
	style := styles.BodyStyle
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(body)
}

func (v *View) renderMarkdown(body string, width int) (string, bool) {
	if v.renderer == nil || v.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStyles(styles.GlamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Debug().Err(err).Msg("failed to create markdown renderer")
			return "", false
		}
		v.renderer = r
		v.rendererWidth = width
	}

	out, err := v.renderer.Render(body)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render message markdown")
		return "", false
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Trim(out, "\n")), true
}
