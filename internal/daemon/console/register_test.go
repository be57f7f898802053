package console

import (
	"context"
	"errors"
	"testing"
)

type fakeCatalog struct {
	registerCalls int
	registerErr   error
	reportCalls   int
	reports       []string
	reportErr     error
}

func (f *fakeCatalog) RegisterLog(ctx context.Context, runID int64, filename string) error {
	f.registerCalls++
	return f.registerErr
}

func (f *fakeCatalog) ReportPanic(ctx context.Context, runID int64, signature string) error {
	f.reportCalls++
	if f.reportErr != nil {
		return f.reportErr
	}
	f.reports = append(f.reports, signature)
	return nil
}

func TestRegistrationGateOnce(t *testing.T) {
	cat := &fakeCatalog{}
	g := NewRegistrationGate(cat, 1, "console.log")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := g.Ensure(ctx); err != nil {
			t.Fatalf("Ensure() error = %v", err)
		}
	}
	if cat.registerCalls != 1 {
		t.Errorf("RegisterLog called %d times, want 1", cat.registerCalls)
	}
	if !g.Registered() {
		t.Error("Registered() = false after success")
	}
}

func TestRegistrationGateRetriesAfterFailure(t *testing.T) {
	unreachable := errors.New("catalog unreachable")
	cat := &fakeCatalog{registerErr: unreachable}
	g := NewRegistrationGate(cat, 1, "console.log")
	ctx := context.Background()

	if err := g.Ensure(ctx); !errors.Is(err, unreachable) {
		t.Fatalf("Ensure() error = %v, want %v", err, unreachable)
	}
	if g.Registered() {
		t.Fatal("Registered() = true after failure")
	}

	cat.registerErr = nil
	if err := g.Ensure(ctx); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if err := g.Ensure(ctx); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if cat.registerCalls != 2 {
		t.Errorf("RegisterLog called %d times, want 2", cat.registerCalls)
	}
}
