package console

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/watchfire-io/labwatch/internal/catalog"
	"github.com/watchfire-io/labwatch/internal/config"
	"github.com/watchfire-io/labwatch/internal/models"
)

// PanicReporter records a panic result for a run and extends its kill
// deadline.
type PanicReporter interface {
	ReportPanic(ctx context.Context, runID int64, signature string) error
}

// Options configures a WatchedFile.
type Options struct {
	RunID     int64
	Path      string // console log being tailed
	CachePath string // local mirror
	Filename  string // name registered with the catalog

	// CheckpointPath, if set, persists committed progress for restarts.
	CheckpointPath string

	BlockSize  int
	FlushLimit int // defaults to 2*BlockSize

	// IgnorePanic still records panics but never reports them.
	IgnorePanic bool

	Detector  *PanicDetector
	Registrar Registrar
	Reporter  PanicReporter
}

// Snapshot is a point-in-time copy of a WatchedFile's state.
type Snapshot struct {
	RunID         int64
	Path          string
	CachePath     string
	Offset        int64
	PendingBytes  int
	Registered    bool
	Panic         *PanicRecord
	PanicReported bool
	Cache         CacheState
}

// WatchedFile tails one run's console log. It is not safe for concurrent
// use; each instance belongs to a single polling goroutine.
type WatchedFile struct {
	runID       int64
	path        string
	reader      ChunkReader
	limit       int
	detector    *PanicDetector
	reporter    PanicReporter
	gate        *RegistrationGate
	cache       *CacheWriter
	ignorePanic bool

	checkpointPath string
	saved          models.Checkpoint

	resumed       bool
	seenData      bool
	offset        int64
	pending       []byte
	panic         *PanicRecord
	panicReported bool
}

// NewWatchedFile creates the state for monitoring one console log.
func NewWatchedFile(opts Options) *WatchedFile {
	limit := opts.FlushLimit
	if limit <= 0 {
		limit = 2 * opts.BlockSize
	}
	detector := opts.Detector
	if detector == nil {
		detector = NewPanicDetector()
	}
	return &WatchedFile{
		runID:       opts.RunID,
		path:        opts.Path,
		reader:      ChunkReader{BlockSize: opts.BlockSize},
		limit:       limit,
		detector:    detector,
		reporter:    opts.Reporter,
		gate:        NewRegistrationGate(opts.Registrar, opts.RunID, opts.Filename),
		cache:       NewCacheWriter(opts.CachePath),
		ignorePanic: opts.IgnorePanic,

		checkpointPath: opts.CheckpointPath,
	}
}

// Poll reads at most one block of new console output and processes it.
// It reports whether any bytes were consumed, so callers can drain a
// backlog by polling until it returns false. Offset and pending fragment
// are only committed once the bytes have been mirrored.
func (w *WatchedFile) Poll(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !w.resumed {
		if err := w.resume(); err != nil {
			return false, err
		}
		w.resumed = true
	}

	chunk, err := w.reader.Read(w.path, w.offset)
	if err != nil {
		return false, err
	}

	pending := w.pending
	if chunk.Truncated {
		log.Printf("[console] %s shrank below offset %d, reading from the start", w.path, w.offset)
		if len(pending) > 0 {
			w.inspect(pending)
		}
		pending = nil
	}

	if len(chunk.Data) == 0 {
		if chunk.Truncated {
			w.offset = 0
			w.pending = nil
		}
		w.settle(ctx)
		w.saveCheckpoint()
		return false, nil
	}

	lines, rest := Reassemble(pending, chunk.Data, w.limit)
	for _, line := range lines {
		w.inspect(line)
	}

	if _, err := w.cache.Append(chunk.Data); err != nil {
		return false, err
	}
	w.offset = chunk.Offset
	w.pending = rest
	w.seenData = true

	w.settle(ctx)
	w.saveCheckpoint()
	return true, nil
}

// resume picks up from an earlier watcher's checkpoint. A checkpoint only
// counts if the mirror is still the size it recorded; otherwise the mirror
// size is the best guess, capped at the source size since a mirror that
// spans a truncation is longer than the current source.
func (w *WatchedFile) resume() error {
	covered, err := w.cache.Resume()
	if err != nil {
		return err
	}

	if w.checkpointPath != "" {
		cp, err := config.LoadCheckpoint(w.checkpointPath)
		if err != nil {
			log.Printf("[console] Warning: ignoring checkpoint for run %d: %v", w.runID, err)
			cp = nil
		}
		// A mirror that existed at the checkpoint but is gone now was
		// collected while no watcher was running.
		collected := cp != nil && cp.CacheSize > 0 && covered == 0
		if cp != nil && (cp.CacheWithdrawn || collected || cp.CacheSize == covered) {
			w.offset = cp.Offset
			w.panicReported = cp.PanicReported
			if cp.CacheWithdrawn || collected {
				w.cache.Withdraw()
			}
			w.seenData = cp.Offset > 0 || covered > 0
			w.saved = *cp
			log.Printf("[console] Resuming run %d at offset %d from checkpoint", w.runID, w.offset)
			return nil
		}
	}

	if covered == 0 {
		return nil
	}
	if info, err := os.Stat(w.path); err == nil && info.Size() < covered {
		log.Printf("[console] Cache for run %d is longer than %s, resuming at its end", w.runID, w.path)
		covered = info.Size()
	}
	log.Printf("[console] Resuming run %d at offset %d from existing cache", w.runID, covered)
	w.offset = covered
	w.seenData = true
	return nil
}

// saveCheckpoint records committed progress when it has changed.
func (w *WatchedFile) saveCheckpoint() {
	if w.checkpointPath == "" {
		return
	}
	cp := models.Checkpoint{
		Version:        1,
		RunID:          w.runID,
		Offset:         w.offset,
		CacheSize:      w.cache.Size(),
		CacheWithdrawn: w.cache.State() == CacheWithdrawn,
		PanicReported:  w.panicReported,
	}
	if cp == w.saved {
		return
	}
	if err := config.SaveCheckpoint(w.checkpointPath, &cp); err != nil {
		log.Printf("[console] Warning: failed to save checkpoint for run %d: %v", w.runID, err)
		return
	}
	w.saved = cp
}

// inspect runs panic detection on one complete line.
func (w *WatchedFile) inspect(line []byte) {
	if w.panic != nil {
		return
	}
	sig, ok := w.detector.Detect(string(line))
	if !ok {
		return
	}
	w.panic = &PanicRecord{
		Signature:  sig.Name,
		Line:       string(line),
		DetectedAt: time.Now().UTC(),
	}
	log.Printf("[console] Panic detected for run %d: %s", w.runID, sig.Name)
}

// settle retries the catalog side effects that have not succeeded yet.
func (w *WatchedFile) settle(ctx context.Context) {
	if w.seenData && w.cache.State() == CacheActive {
		if err := w.gate.Ensure(ctx); err != nil {
			log.Printf("[console] Warning: %v", err)
		}
	}

	if w.panic == nil || w.panicReported || w.ignorePanic || w.reporter == nil {
		return
	}
	err := w.reporter.ReportPanic(ctx, w.runID, w.panic.Signature)
	if errors.Is(err, catalog.ErrPanicAlreadyReported) {
		log.Printf("[console] Panic for run %d was already reported", w.runID)
		w.panicReported = true
		return
	}
	if err != nil {
		log.Printf("[console] Warning: failed to report panic for run %d: %v", w.runID, err)
		return
	}
	w.panicReported = true
}

// Panic returns the run's panic record, or nil if none was seen.
func (w *WatchedFile) Panic() *PanicRecord {
	if w.panic == nil {
		return nil
	}
	p := *w.panic
	return &p
}

// Snapshot returns a copy of the current state.
func (w *WatchedFile) Snapshot() Snapshot {
	return Snapshot{
		RunID:         w.runID,
		Path:          w.path,
		CachePath:     w.cache.Path(),
		Offset:        w.offset,
		PendingBytes:  len(w.pending),
		Registered:    w.gate.Registered(),
		Panic:         w.Panic(),
		PanicReported: w.panicReported,
		Cache:         w.cache.State(),
	}
}
