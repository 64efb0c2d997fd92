package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/baturay/inkwell/internal/timer"
)

// channelNotifier bridges engine notifications into Bubble Tea messages.
// The buffer absorbs bursts; an overflowing notification is dropped rather
// than blocking a timer transition.
type channelNotifier struct {
	ch chan statusMsg
}

func newChannelNotifier() *channelNotifier {
	return &channelNotifier{ch: make(chan statusMsg, 16)}
}

func (n *channelNotifier) Notify(kind timer.Kind, message string) {
	msg := statusMsg{text: message, isError: kind == timer.KindError}
	select {
	case n.ch <- msg:
	default:
	}
}

// wait returns a command that delivers the next notification. The app
// re-arms it after each delivery.
func (n *channelNotifier) wait() tea.Cmd {
	return func() tea.Msg {
		return <-n.ch
	}
}
