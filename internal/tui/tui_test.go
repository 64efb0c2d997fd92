package tui

import (
	"testing"

	"github.com/baturay/inkwell/internal/store"
	"github.com/baturay/inkwell/internal/timer"
)

func TestMaintenanceBadge(t *testing.T) {
	for _, status := range []string{
		store.MaintenanceCurrent,
		store.MaintenanceStale,
		store.MaintenanceOutdated,
		store.MaintenanceCritical,
	} {
		if maintenanceBadge(status) == "" {
			t.Errorf("empty badge for %q", status)
		}
	}
	if maintenanceBadge("") == "" {
		t.Error("unknown status should still render a placeholder")
	}
}

func TestShortPhase(t *testing.T) {
	cases := map[string]string{
		"writing":         "writing",
		"review-editing":  "review",
		"version-updates": "versions",
		"maintenance":     "maint",
	}
	for in, want := range cases {
		if got := shortPhase(in); got != want {
			t.Errorf("shortPhase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChannelNotifierDoesNotBlock(t *testing.T) {
	n := newChannelNotifier()
	// Flood past the buffer; surplus notifications drop instead of blocking.
	for i := 0; i < 100; i++ {
		n.Notify(timer.KindSuccess, "tick")
	}
	msg := <-n.ch
	if msg.isError {
		t.Fatal("unexpected error message")
	}
}

func TestRunningCount(t *testing.T) {
	m := trackerModel{timers: []store.ActiveTimer{
		{Status: store.TimerActive},
		{Status: store.TimerPaused},
		{Status: store.TimerActive},
	}}
	if got := m.runningCount(); got != 2 {
		t.Fatalf("got %d", got)
	}
}
