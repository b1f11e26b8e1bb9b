package tui

import tea "charm.land/bubbletea/v2"

// BellMsg carries an audio cue sequence raised off the event loop. The
// program writes it through its renderer so it never interleaves with a
// frame.
type BellMsg struct {
	Seq string
}

func (m Model) handleBell(msg BellMsg) (tea.Model, tea.Cmd) {
	if msg.Seq == "" {
		return m, nil
	}
	return m, tea.Raw(msg.Seq)
}
