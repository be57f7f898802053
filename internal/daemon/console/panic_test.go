package console

import (
	"testing"

	"github.com/watchfire-io/labwatch/internal/models"
)

func TestPanicDetectorDefaults(t *testing.T) {
	d := NewPanicDetector()

	tests := []struct {
		name     string
		line     string
		expected string // empty means no match
	}{
		{name: "kernel panic", line: "Kernel panic - not syncing: Fatal exception in interrupt", expected: "Kernel panic"},
		{name: "bare oops", line: "Oops", expected: "Oops"},
		{name: "oops with code", line: "Oops: 0002 [#1] SMP", expected: "Oops"},
		{name: "oops as word prefix", line: "Oopsie daisy", expected: ""},
		{name: "gpf", line: "general protection fault: 0000 [#1] SMP", expected: "general protection fault"},
		{name: "userspace gpf", line: "traps: a.out[42] general protection fault ip:400 sp:7ff", expected: ""},
		{name: "kernel bug", line: "kernel BUG at mm/slab.c:3014!", expected: "kernel BUG at"},
		{name: "soft lockup", line: "BUG: soft lockup - CPU#0 stuck for 22s!", expected: "BUG: soft lockup"},
		{name: "xen", line: "(XEN) Panic on CPU 0:", expected: "(XEN) Panic"},
		{name: "rcu stall", line: "INFO: rcu_sched self-detected stall on CPU", expected: "INFO: rcu_sched self-detected stall"},
		{name: "normal output", line: "Starting udev Kernel Device Manager...", expected: ""},
		{name: "empty line", line: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := d.Detect(tt.line)
			if tt.expected == "" {
				if ok {
					t.Errorf("Detect(%q) = %q, want no match", tt.line, sig.Name)
				}
				return
			}
			if !ok || sig.Name != tt.expected {
				t.Errorf("Detect(%q) = (%q, %v), want %q", tt.line, sig.Name, ok, tt.expected)
			}
		})
	}
}

func TestPanicDetectorFirstMatchWins(t *testing.T) {
	d := NewPanicDetector(Substring("BUG:"), Substring("Kernel panic"))
	sig, ok := d.Detect("Kernel panic after BUG: soft lockup")
	if !ok || sig.Name != "BUG:" {
		t.Errorf("Detect() = (%q, %v), want BUG:", sig.Name, ok)
	}
}

func TestSignaturesFromSettings(t *testing.T) {
	sigs, err := SignaturesFromSettings(nil)
	if err != nil {
		t.Fatalf("SignaturesFromSettings(nil) error = %v", err)
	}
	if len(sigs) != len(DefaultSignatures()) {
		t.Errorf("SignaturesFromSettings(nil) returned %d signatures, want defaults", len(sigs))
	}

	sigs, err = SignaturesFromSettings([]models.PanicSignature{
		{Name: "hung task", Substring: "blocked for more than"},
		{Name: "mce", Pattern: `Machine check (events|exception)`},
	})
	if err != nil {
		t.Fatalf("SignaturesFromSettings() error = %v", err)
	}
	d := NewPanicDetector(sigs...)
	if sig, ok := d.Detect("INFO: task kworker blocked for more than 120 seconds."); !ok || sig.Name != "hung task" {
		t.Errorf("Detect() = (%q, %v), want hung task", sig.Name, ok)
	}
	if sig, ok := d.Detect("mce: [Hardware Error]: Machine check events logged"); !ok || sig.Name != "mce" {
		t.Errorf("Detect() = (%q, %v), want mce", sig.Name, ok)
	}
	if _, ok := d.Detect("Kernel panic"); ok {
		t.Error("custom list should replace the defaults")
	}

	if _, err := SignaturesFromSettings([]models.PanicSignature{{Name: "bad", Pattern: `(`}}); err == nil {
		t.Error("SignaturesFromSettings() with invalid pattern: error = nil")
	}
}
