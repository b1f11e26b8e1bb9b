package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
)

// keyMap holds every binding the TUI responds to outside the composer.
type keyMap struct {
	Quit         key.Binding
	Inbox        key.Binding
	Requests     key.Binding
	SwitchFocus  key.Binding
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Bottom       key.Binding
	Open         key.Binding
	Compose      key.Binding
	NewConvo     key.Binding
	AddFriend    key.Binding
	Accept       key.Binding
	Decline      key.Binding
	Back         key.Binding
	ComposerSend key.Binding
	ComposerExit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Inbox:        key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "inbox")),
		Requests:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "requests")),
		SwitchFocus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Bottom:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "newest")),
		Open:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Compose:      key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c", "compose")),
		NewConvo:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new conversation")),
		AddFriend:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "add friend")),
		Accept:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Decline:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "decline")),
		Back:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		ComposerSend: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		ComposerExit: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// helpFor returns the bindings worth advertising for the focused pane.
func (k keyMap) helpFor(f focus, requests bool) []key.Binding {
	switch f {
	case focusComposer:
		return []key.Binding{k.ComposerSend, k.ComposerExit}
	case focusInbox:
		if requests {
			return []key.Binding{k.Up, k.Down, k.Accept, k.Decline, k.SwitchFocus, k.Quit}
		}
		return []key.Binding{k.Up, k.Down, k.Open, k.Requests, k.NewConvo, k.SwitchFocus, k.Quit}
	default:
		return []key.Binding{k.Up, k.Down, k.Bottom, k.Compose, k.Inbox, k.NewConvo, k.AddFriend, k.Quit}
	}
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
