package config

import (
	"path/filepath"
	"strconv"

	"github.com/watchfire-io/labwatch/internal/models"
)

// CheckpointsDirName holds one checkpoint file per monitored run.
const CheckpointsDirName = "checkpoints"

// GlobalCheckpointFile returns ~/.labwatch/checkpoints/<runID>.yaml.
func GlobalCheckpointFile(runID int64) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CheckpointsDirName, strconv.FormatInt(runID, 10)+".yaml"), nil
}

// LoadCheckpoint loads a checkpoint. Returns nil if the file doesn't exist.
func LoadCheckpoint(path string) (*models.Checkpoint, error) {
	if !FileExists(path) {
		return nil, nil
	}
	var cp models.Checkpoint
	if err := LoadYAML(path, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// SaveCheckpoint writes a checkpoint.
func SaveCheckpoint(path string, cp *models.Checkpoint) error {
	return SaveYAML(path, cp)
}

// RemoveCheckpoint removes a checkpoint, treating a missing file as success.
func RemoveCheckpoint(path string) error {
	return RemoveIfExists(path)
}
