package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/watchfire-io/labwatch/internal/models"
)

// DefaultPanicExtension is how far a panic pushes the kill deadline out.
const DefaultPanicExtension = 10 * time.Minute

// ResultPanic is the result type recorded for a detected panic.
const ResultPanic = "panic"

// LogRecord is a registered log file.
type LogRecord struct {
	ID           string
	RunID        int64
	Filename     string
	Server       string // set when a transfer process has moved the log
	RegisteredAt time.Time
}

// Result is a task result recorded against a run.
type Result struct {
	ID         string
	Result     string
	Log        string
	RecordedAt time.Time
}

type memoryRun struct {
	run      models.Run
	active   bool
	killTime time.Time
	logs     []*LogRecord
	results  []Result
}

// Memory is an in-process Catalog. It is safe for concurrent use.
type Memory struct {
	mu             sync.Mutex
	runs           map[int64]*memoryRun
	now            func() time.Time
	panicExtension time.Duration
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{
		runs:           make(map[int64]*memoryRun),
		now:            time.Now,
		panicExtension: DefaultPanicExtension,
	}
}

// SetPanicExtension changes how far ReportPanic moves the kill deadline.
func (m *Memory) SetPanicExtension(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicExtension = d
}

// AddRun adds an active run with the given kill deadline.
func (m *Memory) AddRun(run models.Run, killTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.RunID] = &memoryRun{run: run, active: true, killTime: killTime}
}

// Seed loads runs from a runs file.
func (m *Memory) Seed(file *models.RunsFile) {
	for _, seed := range file.Runs {
		kill := seed.KillTime
		if kill.IsZero() {
			kill = m.now().Add(24 * time.Hour)
		}
		m.AddRun(seed.Run, kill)
		if seed.Finished {
			_ = m.FinishRun(seed.RunID)
		}
	}
}

// FinishRun marks a run as no longer active.
func (m *Memory) FinishRun(runID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	r.active = false
	return nil
}

// RegisterLog implements Catalog.
func (m *Memory) RegisterLog(ctx context.Context, runID int64, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	for _, l := range r.logs {
		if l.Filename == filename {
			return nil
		}
	}
	r.logs = append(r.logs, &LogRecord{
		ID:           uuid.New().String(),
		RunID:        runID,
		Filename:     filename,
		RegisteredAt: m.now().UTC(),
	})
	return nil
}

// ReportPanic implements Catalog. A second report for the same run is
// rejected and leaves the deadline untouched.
func (m *Memory) ReportPanic(ctx context.Context, runID int64, signature string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	for _, res := range r.results {
		if res.Result == ResultPanic {
			return fmt.Errorf("%w: %d", ErrPanicAlreadyReported, runID)
		}
	}
	now := m.now().UTC()
	r.results = append(r.results, Result{
		ID:         uuid.New().String(),
		Result:     ResultPanic,
		Log:        signature,
		RecordedAt: now,
	})
	r.killTime = now.Add(m.panicExtension)
	return nil
}

// IsRunActive implements Catalog. Unknown runs are not active.
func (m *Memory) IsRunActive(ctx context.Context, runID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	return ok && r.active, nil
}

// ActiveRuns implements Catalog, ordered by run ID.
func (m *Memory) ActiveRuns(ctx context.Context) ([]models.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	runs := make([]models.Run, 0, len(m.runs))
	for _, r := range m.runs {
		if r.active {
			runs = append(runs, r.run)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].RunID < runs[j].RunID })
	return runs, nil
}

// Logs returns copies of a run's registered logs.
func (m *Memory) Logs(runID int64) []LogRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return nil
	}
	logs := make([]LogRecord, 0, len(r.logs))
	for _, l := range r.logs {
		logs = append(logs, *l)
	}
	return logs
}

// SetLogServer marks a log as moved to server, as a transfer process does.
func (m *Memory) SetLogServer(runID int64, filename, server string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	for _, l := range r.logs {
		if l.Filename == filename {
			l.Server = server
			return nil
		}
	}
	return fmt.Errorf("log %s not registered for run %d", filename, runID)
}

// Results returns a run's recorded results.
func (m *Memory) Results(runID int64) []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return nil
	}
	return append([]Result(nil), r.results...)
}

// KillTime returns a run's current kill deadline.
func (m *Memory) KillTime(runID int64) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return time.Time{}, false
	}
	return r.killTime, true
}
