package models

// Checkpoint is the committed progress of one run's console watcher, so a
// restarted daemon carries on where the last one stopped.
// This corresponds to ~/.labwatch/checkpoints/<run_id>.yaml.
type Checkpoint struct {
	Version        int   `yaml:"version"`
	RunID          int64 `yaml:"run_id"`
	Offset         int64 `yaml:"offset"`     // source bytes consumed
	CacheSize      int64 `yaml:"cache_size"` // mirror size when Offset was committed
	CacheWithdrawn bool  `yaml:"cache_withdrawn,omitempty"`
	PanicReported  bool  `yaml:"panic_reported,omitempty"`
}
