package console

import (
	"context"
	"fmt"
)

// Registrar announces a run's log to the catalog.
type Registrar interface {
	RegisterLog(ctx context.Context, runID int64, filename string) error
}

// RegistrationGate registers a log with the catalog at most once.
// Failed attempts leave the gate open for the next call.
type RegistrationGate struct {
	registrar  Registrar
	runID      int64
	filename   string
	registered bool
}

// NewRegistrationGate creates a gate for one run's log file.
func NewRegistrationGate(registrar Registrar, runID int64, filename string) *RegistrationGate {
	return &RegistrationGate{registrar: registrar, runID: runID, filename: filename}
}

// Ensure registers the log unless a previous call already succeeded.
func (g *RegistrationGate) Ensure(ctx context.Context) error {
	if g.registered {
		return nil
	}
	if err := g.registrar.RegisterLog(ctx, g.runID, g.filename); err != nil {
		return fmt.Errorf("failed to register %s for run %d: %w", g.filename, g.runID, err)
	}
	g.registered = true
	return nil
}

// Registered reports whether registration has succeeded.
func (g *RegistrationGate) Registered() bool {
	return g.registered
}
