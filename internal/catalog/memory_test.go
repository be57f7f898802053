package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/watchfire-io/labwatch/internal/models"
)

func TestMemoryRegisterLogIdempotent(t *testing.T) {
	m := NewMemory()
	m.AddRun(models.Run{RunID: 7, System: "a.example.com"}, time.Now().Add(time.Hour))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := m.RegisterLog(ctx, 7, "console.log"); err != nil {
			t.Fatalf("RegisterLog() error = %v", err)
		}
	}
	logs := m.Logs(7)
	if len(logs) != 1 {
		t.Fatalf("Logs() = %d records, want 1", len(logs))
	}
	if logs[0].ID == "" || logs[0].Filename != "console.log" {
		t.Errorf("unexpected record %+v", logs[0])
	}

	if err := m.RegisterLog(ctx, 8, "console.log"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("RegisterLog(unknown) error = %v, want ErrRunNotFound", err)
	}
}

func TestMemoryReportPanicExtendsOnce(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return now }
	m.SetPanicExtension(5 * time.Minute)
	m.AddRun(models.Run{RunID: 7}, now.Add(time.Hour))
	ctx := context.Background()

	if err := m.ReportPanic(ctx, 7, "Oops"); err != nil {
		t.Fatalf("ReportPanic() error = %v", err)
	}
	kill1, _ := m.KillTime(7)
	if !kill1.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("KillTime() = %v, want %v", kill1, now.Add(5*time.Minute))
	}

	now = now.Add(time.Minute)
	if err := m.ReportPanic(ctx, 7, "Oops"); !errors.Is(err, ErrPanicAlreadyReported) {
		t.Errorf("second ReportPanic() error = %v, want ErrPanicAlreadyReported", err)
	}
	kill2, _ := m.KillTime(7)
	if !kill2.Equal(kill1) {
		t.Errorf("KillTime() changed from %v to %v", kill1, kill2)
	}
	results := m.Results(7)
	if len(results) != 1 || results[0].Result != ResultPanic || results[0].Log != "Oops" {
		t.Errorf("Results() = %+v", results)
	}
}

func TestMemoryActiveRuns(t *testing.T) {
	m := NewMemory()
	m.Seed(&models.RunsFile{Runs: []models.RunSeed{
		{Run: models.Run{RunID: 3, System: "c"}},
		{Run: models.Run{RunID: 1, System: "a"}},
		{Run: models.Run{RunID: 2, System: "b"}, Finished: true},
	}})
	ctx := context.Background()

	runs, err := m.ActiveRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].RunID != 1 || runs[1].RunID != 3 {
		t.Errorf("ActiveRuns() = %+v, want runs 1 and 3", runs)
	}

	if active, _ := m.IsRunActive(ctx, 2); active {
		t.Error("IsRunActive(2) = true for finished run")
	}
	if err := m.FinishRun(3); err != nil {
		t.Fatal(err)
	}
	if active, _ := m.IsRunActive(ctx, 3); active {
		t.Error("IsRunActive(3) = true after FinishRun")
	}
	if active, _ := m.IsRunActive(ctx, 99); active {
		t.Error("IsRunActive(99) = true for unknown run")
	}
}

func TestMemorySetLogServer(t *testing.T) {
	m := NewMemory()
	m.AddRun(models.Run{RunID: 7}, time.Now())
	if err := m.SetLogServer(7, "console.log", "http://elsewhere"); err == nil {
		t.Error("SetLogServer() on unregistered log: error = nil")
	}
	_ = m.RegisterLog(context.Background(), 7, "console.log")
	if err := m.SetLogServer(7, "console.log", "http://elsewhere"); err != nil {
		t.Fatal(err)
	}
	if got := m.Logs(7)[0].Server; got != "http://elsewhere" {
		t.Errorf("Server = %q, want http://elsewhere", got)
	}
}
