package main

import (
	"testing"

	"github.com/gogpu/embedview/backend"
)

func TestRunNoopBackend(t *testing.T) {
	code := run([]string{
		"-backend", backend.Noop,
		"-views", "2",
		"-fps", "200",
		"-duration", "100ms",
		"-width", "32",
		"-height", "32",
	})
	if code != 0 {
		t.Errorf("run() = %d, want 0", code)
	}
}

func TestRunUnknownBackend(t *testing.T) {
	// Views are still created; they just never draw.
	if code := run([]string{"-backend", "missing", "-views", "1", "-duration", "20ms"}); code != 0 {
		t.Errorf("run() = %d, want 0", code)
	}
}

func TestRunBadFlag(t *testing.T) {
	if code := run([]string{"-views", "many"}); code != 2 {
		t.Errorf("run() = %d, want 2", code)
	}
}
