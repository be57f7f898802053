// Package catalog defines the external catalog the watchdog reports to,
// with an in-memory implementation and a gRPC transport.
package catalog

import (
	"context"
	"errors"

	"github.com/watchfire-io/labwatch/internal/models"
)

// Errors returned by catalog implementations.
var (
	ErrRunNotFound          = errors.New("run not found")
	ErrPanicAlreadyReported = errors.New("panic already reported for run")
)

// Catalog is the set of catalog operations the watchdog consumes.
type Catalog interface {
	// RegisterLog announces a run's log file. It is idempotent.
	RegisterLog(ctx context.Context, runID int64, filename string) error
	// ReportPanic records a panic result and extends the run's kill deadline.
	ReportPanic(ctx context.Context, runID int64, signature string) error
	// IsRunActive reports whether the run still needs monitoring.
	IsRunActive(ctx context.Context, runID int64) (bool, error)
	// ActiveRuns lists the runs that should currently be monitored.
	ActiveRuns(ctx context.Context) ([]models.Run, error)
}
