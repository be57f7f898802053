package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/watchfire-io/labwatch/internal/daemon/console"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanFileFindsEveryMatch(t *testing.T) {
	content := "booting\n" +
		"Kernel panic - not syncing: Fatal exception\n" +
		strings.Repeat("x", 50) + "\n" +
		"BUG: soft lockup - CPU#0 stuck for 22s!\n"
	path := writeTemp(t, content)

	findings, err := scanFile(path, console.NewPanicDetector(), 16, 128)
	if err != nil {
		t.Fatalf("scanFile() error = %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("findings = %+v, want 2", findings)
	}
	if findings[0].Line != 2 || findings[0].Signature != "Kernel panic" {
		t.Errorf("findings[0] = %+v", findings[0])
	}
	if findings[1].Line != 4 || findings[1].Signature != "BUG: soft lockup" {
		t.Errorf("findings[1] = %+v", findings[1])
	}
}

func TestScanFileChecksUnterminatedLastLine(t *testing.T) {
	path := writeTemp(t, "ok\nOops: 0002 [#1] SMP")

	findings, err := scanFile(path, console.NewPanicDetector(), 8, 64)
	if err != nil {
		t.Fatalf("scanFile() error = %v", err)
	}
	if len(findings) != 1 || findings[0].Signature != "Oops" {
		t.Errorf("findings = %+v, want one Oops", findings)
	}
}

func TestScanFileClean(t *testing.T) {
	path := writeTemp(t, "nothing to see here\nOopsie daisy\n")

	findings, err := scanFile(path, console.NewPanicDetector(), 64, 128)
	if err != nil {
		t.Fatalf("scanFile() error = %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %+v, want none", findings)
	}
}

func TestScanFileMissing(t *testing.T) {
	if _, err := scanFile(filepath.Join(t.TempDir(), "nope"), console.NewPanicDetector(), 64, 128); err == nil {
		t.Error("scanFile() on a missing file should fail")
	}
}

func TestScanFileLineNumbersIgnoreForcedCuts(t *testing.T) {
	content := strings.Repeat("z", 100) + "\n" +
		"ok\n" +
		"Kernel panic - not syncing\n"
	path := writeTemp(t, content)

	// A 32-byte limit cuts the first line into several pieces.
	findings, err := scanFile(path, console.NewPanicDetector(), 16, 32)
	if err != nil {
		t.Fatalf("scanFile() error = %v", err)
	}
	if len(findings) != 1 || findings[0].Line != 3 {
		t.Errorf("findings = %+v, want the panic on line 3", findings)
	}
}
