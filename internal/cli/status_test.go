package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/watchfire-io/labwatch/internal/models"
)

func TestWriteMonitors(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	polled := now.Add(-3 * time.Second)
	monitors := []models.MonitorInfo{
		{RunID: 7, System: "a.example.com", Offset: 42, Registered: true, LastPollAt: &polled},
		{RunID: 8, System: "b.example.com", PanicSignature: "Oops", PanicReported: true},
		{RunID: 9, System: "c.example.com", CacheWithdrawn: true},
	}

	var buf bytes.Buffer
	writeMonitors(&buf, monitors, now)
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3:\n%s", len(lines), out)
	}
	for _, want := range []string{"watching", "3s ago", "panic: Oops", "collected", "never"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
