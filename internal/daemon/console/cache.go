package console

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// CacheState is whether a cache mirror still accepts bytes.
type CacheState int

const (
	CacheActive CacheState = iota
	CacheWithdrawn
)

func (s CacheState) String() string {
	if s == CacheWithdrawn {
		return "withdrawn"
	}
	return "active"
}

// CacheWriter appends console bytes to a local mirror file. Once a cache
// that existed goes missing, the transfer process has collected it and
// the writer stops for good rather than recreate a partial copy.
type CacheWriter struct {
	path  string
	known bool // the file has existed at least once
	size  int64
	state CacheState
}

// NewCacheWriter creates a writer for the mirror at path.
func NewCacheWriter(path string) *CacheWriter {
	return &CacheWriter{path: path}
}

// Path returns the mirror's location.
func (c *CacheWriter) Path() string {
	return c.path
}

// State returns the writer's current state.
func (c *CacheWriter) State() CacheState {
	return c.state
}

// Resume adopts a mirror left by an earlier watcher and returns its size.
// It returns 0 when there is nothing to resume.
func (c *CacheWriter) Resume() (int64, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to stat cache %s: %w", c.path, err)
	}
	c.known = true
	c.size = info.Size()
	return c.size, nil
}

// Size returns the mirror's size as of the last successful append or resume.
func (c *CacheWriter) Size() int64 {
	return c.size
}

// Withdraw stops mirroring for good.
func (c *CacheWriter) Withdraw() {
	c.state = CacheWithdrawn
}

// Append writes data to the end of the mirror. Data offered to a
// withdrawn cache is discarded.
func (c *CacheWriter) Append(data []byte) (CacheState, error) {
	if c.state == CacheWithdrawn || len(data) == 0 {
		return c.state, nil
	}

	// Only the first write may create the file; after that a missing file
	// means it was collected.
	flags := os.O_WRONLY | os.O_APPEND
	if !c.known {
		if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
			return c.state, fmt.Errorf("failed to create cache dir: %w", err)
		}
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(c.path, flags, 0644)
	if err != nil {
		if c.known && os.IsNotExist(err) {
			log.Printf("[console] Cache %s was removed externally, no longer mirroring", c.path)
			c.state = CacheWithdrawn
			return c.state, nil
		}
		return c.state, fmt.Errorf("failed to open cache %s: %w", c.path, err)
	}
	c.known = true
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return c.state, fmt.Errorf("failed to seek cache %s: %w", c.path, err)
	}
	if _, err := f.Write(data); err != nil {
		// Drop the partial write so a retry of the same bytes stays a clean mirror.
		_ = f.Truncate(end)
		f.Close()
		return c.state, fmt.Errorf("failed to append to cache %s: %w", c.path, err)
	}
	if err := f.Close(); err != nil {
		return c.state, fmt.Errorf("failed to close cache %s: %w", c.path, err)
	}
	c.size = end + int64(len(data))
	return c.state, nil
}
