// Package console implements console log tailing, panic detection and
// cache mirroring for a single monitored run.
package console

import (
	"fmt"
	"io"
	"os"
)

// Chunk is the result of one bounded read from a console log.
type Chunk struct {
	Data      []byte
	Offset    int64 // offset to commit once Data has been handled
	Truncated bool  // file shrank below the previous offset; Data starts at 0
}

// ChunkReader reads a file from a remembered offset in fixed-size blocks.
type ChunkReader struct {
	BlockSize int
}

// Read returns up to BlockSize bytes starting at offset. A file that does
// not exist yet yields an empty chunk. If the file is now shorter than
// offset it has been truncated or rotated, and reading restarts at 0.
func (r ChunkReader) Read(path string, offset int64) (Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Chunk{Offset: offset}, nil
		}
		return Chunk{Offset: offset}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Chunk{Offset: offset}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	chunk := Chunk{Offset: offset}
	size := info.Size()
	if size < offset {
		chunk.Truncated = true
		chunk.Offset = 0
	}

	n := size - chunk.Offset
	if n <= 0 {
		return chunk, nil
	}
	if n > int64(r.BlockSize) {
		n = int64(r.BlockSize)
	}

	buf := make([]byte, n)
	read, err := f.ReadAt(buf, chunk.Offset)
	if err != nil && err != io.EOF {
		return Chunk{Offset: offset}, fmt.Errorf("failed to read %s at %d: %w", path, chunk.Offset, err)
	}
	chunk.Data = buf[:read]
	chunk.Offset += int64(read)
	return chunk, nil
}
