// Package monitor runs one console watcher per active run.
package monitor

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/watchfire-io/labwatch/internal/catalog"
	"github.com/watchfire-io/labwatch/internal/config"
	"github.com/watchfire-io/labwatch/internal/daemon/console"
	"github.com/watchfire-io/labwatch/internal/models"
)

// Config holds the tunables shared by every run's watcher.
type Config struct {
	ConsoleLogsDir  string
	CacheDir        string
	PollInterval    time.Duration
	RefreshInterval time.Duration
	BlockSize       int
	FlushLimit      int
	Detector        *console.PanicDetector
}

// ConfigFromSettings builds a Config from loaded settings.
func ConfigFromSettings(s *models.Settings) (Config, error) {
	sigs, err := console.SignaturesFromSettings(s.PanicSignatures)
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConsoleLogsDir:  s.ConsoleLogsDir,
		CacheDir:        s.CacheDir,
		PollInterval:    s.PollInterval,
		RefreshInterval: s.RefreshInterval,
		BlockSize:       s.BlockSize,
		FlushLimit:      s.FlushLimit(),
		Detector:        console.NewPanicDetector(sigs...),
	}, nil
}

// monitoredRun is a run with its polling goroutine.
type monitoredRun struct {
	run       models.Run
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
	nudge     chan struct{}

	mu       sync.Mutex // guards snapshot and lastPoll
	snapshot console.Snapshot
	lastPoll time.Time
}

// Manager starts and stops console watchers as runs come and go.
type Manager struct {
	mu         sync.RWMutex
	runs       map[int64]*monitoredRun // keyed by RunID
	retired    map[int64]bool          // runs seen finishing; never restarted
	catalog    catalog.Catalog
	cfg        Config
	onChangeFn func()
}

// NewManager creates a manager reporting to cat.
func NewManager(cat catalog.Catalog, cfg Config) *Manager {
	if cfg.Detector == nil {
		cfg.Detector = console.NewPanicDetector()
	}
	return &Manager{
		runs:    make(map[int64]*monitoredRun),
		retired: make(map[int64]bool),
		catalog: cat,
		cfg:     cfg,
	}
}

// SetOnChange sets a callback invoked after monitors start or stop.
func (m *Manager) SetOnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChangeFn = fn
}

// Run keeps the monitored set in sync with the catalog until ctx is
// done, then stops every watcher.
func (m *Manager) Run(ctx context.Context) error {
	defer m.StopAll()

	if err := m.Sync(ctx); err != nil {
		log.Printf("[monitor] Warning: failed to list active runs: %v", err)
	}

	ticker := time.NewTicker(m.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.Sync(ctx); err != nil {
				log.Printf("[monitor] Warning: failed to list active runs: %v", err)
			}
			m.persistState()
		}
	}
}

// Sync starts watchers for newly active runs and stops watchers for runs
// the catalog no longer lists.
func (m *Manager) Sync(ctx context.Context) error {
	runs, err := m.catalog.ActiveRuns(ctx)
	if err != nil {
		return err
	}

	active := make(map[int64]bool, len(runs))
	for _, r := range runs {
		active[r.RunID] = true
		m.Start(r)
	}

	m.mu.Lock()
	var stale []int64
	for id := range m.runs {
		if !active[id] {
			stale = append(stale, id)
		}
	}
	// A retired run only needs remembering while the catalog still lists it.
	for id := range m.retired {
		if !active[id] {
			delete(m.retired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.Stop(id)
		forgetCheckpoint(id)
	}
	return nil
}

// Start begins watching run's console log. It does nothing if the run is
// already being watched or has already been seen to finish, so a lagging
// run list cannot resurrect a cache the transfer process collected.
func (m *Manager) Start(run models.Run) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[run.RunID]; ok || m.retired[run.RunID] {
		return
	}

	checkpoint, err := config.GlobalCheckpointFile(run.RunID)
	if err != nil {
		log.Printf("[monitor] Warning: run %d will not be checkpointed: %v", run.RunID, err)
	}

	file := console.NewWatchedFile(console.Options{
		RunID:          run.RunID,
		Path:           config.ConsoleLogPath(m.cfg.ConsoleLogsDir, run.System),
		CachePath:      config.CachedConsoleLogPath(m.cfg.CacheDir, run.RunID),
		Filename:       config.ConsoleLogFileName,
		CheckpointPath: checkpoint,
		BlockSize:      m.cfg.BlockSize,
		FlushLimit:     m.cfg.FlushLimit,
		IgnorePanic:    run.PanicIgnore,
		Detector:       m.cfg.Detector,
		Registrar:      m.catalog,
		Reporter:       m.catalog,
	})

	ctx, cancel := context.WithCancel(context.Background())
	mr := &monitoredRun{
		run:       run,
		startedAt: time.Now().UTC(),
		cancel:    cancel,
		done:      make(chan struct{}),
		nudge:     make(chan struct{}, 1),
		snapshot:  file.Snapshot(),
	}
	m.runs[run.RunID] = mr
	m.persistStateLocked()

	log.Printf("[monitor] Watching run %d on %s", run.RunID, run.System)
	go m.watch(ctx, mr, file)
}

// watch is the polling loop owning one WatchedFile.
func (m *Manager) watch(ctx context.Context, mr *monitoredRun, file *console.WatchedFile) {
	defer close(mr.done)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		active, err := m.catalog.IsRunActive(ctx, mr.run.RunID)
		if err != nil && ctx.Err() == nil {
			log.Printf("[monitor] Warning: failed to check run %d: %v", mr.run.RunID, err)
			active = true
		}

		m.drain(ctx, mr, file)

		if err == nil && !active {
			log.Printf("[monitor] Run %d is no longer active", mr.run.RunID)
			m.remove(mr)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-mr.nudge:
		}
	}
}

// drain polls until the console log has no unread bytes.
func (m *Manager) drain(ctx context.Context, mr *monitoredRun, file *console.WatchedFile) {
	for {
		progressed, err := file.Poll(ctx)
		if err != nil && ctx.Err() == nil {
			log.Printf("[monitor] Warning: poll failed for run %d: %v", mr.run.RunID, err)
		}
		mr.mu.Lock()
		mr.snapshot = file.Snapshot()
		mr.lastPoll = time.Now().UTC()
		mr.mu.Unlock()
		if !progressed {
			return
		}
	}
}

// remove drops a run whose goroutine exited on its own, unless it has
// already been replaced or stopped.
func (m *Manager) remove(mr *monitoredRun) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.runs[mr.run.RunID]; ok && cur == mr {
		mr.cancel()
		delete(m.runs, mr.run.RunID)
		m.retired[mr.run.RunID] = true
		m.persistStateLocked()
		forgetCheckpoint(mr.run.RunID)
	}
}

// forgetCheckpoint drops the saved progress of a run that has ended.
func forgetCheckpoint(runID int64) {
	path, err := config.GlobalCheckpointFile(runID)
	if err != nil {
		return
	}
	if err := config.RemoveCheckpoint(path); err != nil {
		log.Printf("[monitor] Failed to remove checkpoint for run %d: %v", runID, err)
	}
}

// Stop stops watching a run and waits for its goroutine to exit.
func (m *Manager) Stop(runID int64) {
	m.mu.Lock()
	mr, ok := m.runs[runID]
	if ok {
		delete(m.runs, runID)
		m.persistStateLocked()
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	mr.cancel()
	<-mr.done
	log.Printf("[monitor] Stopped watching run %d", runID)
}

// StopAll stops every watcher.
func (m *Manager) StopAll() {
	m.mu.RLock()
	ids := make([]int64, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.Stop(id)
	}
}

// Nudge asks the watcher for system to poll now instead of waiting for
// its next tick.
func (m *Manager) Nudge(system string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mr := range m.runs {
		if mr.run.System != system {
			continue
		}
		select {
		case mr.nudge <- struct{}{}:
		default:
		}
	}
}

// Snapshot returns the latest state of a run's watcher.
func (m *Manager) Snapshot(runID int64) (console.Snapshot, bool) {
	m.mu.RLock()
	mr, ok := m.runs[runID]
	m.mu.RUnlock()
	if !ok {
		return console.Snapshot{}, false
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	return mr.snapshot, true
}

// List returns the monitored runs, ordered by run ID.
func (m *Manager) List() []models.MonitorInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked()
}

func (m *Manager) listLocked() []models.MonitorInfo {
	infos := make([]models.MonitorInfo, 0, len(m.runs))
	for _, mr := range m.runs {
		mr.mu.Lock()
		snap, lastPoll := mr.snapshot, mr.lastPoll
		mr.mu.Unlock()

		info := models.MonitorInfo{
			RunID:          mr.run.RunID,
			System:         mr.run.System,
			ConsoleLog:     snap.Path,
			CachedLog:      snap.CachePath,
			Offset:         snap.Offset,
			Registered:     snap.Registered,
			PanicReported:  snap.PanicReported,
			CacheWithdrawn: snap.Cache == console.CacheWithdrawn,
			StartedAt:      mr.startedAt,
		}
		if snap.Panic != nil {
			info.PanicSignature = snap.Panic.Signature
		}
		if !lastPoll.IsZero() {
			t := lastPoll
			info.LastPollAt = &t
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].RunID < infos[j].RunID })
	return infos
}

func (m *Manager) persistState() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.persistStateLocked()
}

// persistStateLocked must be called with m.mu held.
func (m *Manager) persistStateLocked() {
	state := models.NewMonitorState()
	state.Monitors = m.listLocked()
	if err := config.SaveMonitorState(state); err != nil {
		log.Printf("[monitor] Failed to persist monitor state: %v", err)
	}

	if m.onChangeFn != nil {
		go m.onChangeFn()
	}
}
