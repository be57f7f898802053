package console

import (
	"os"
	"path/filepath"
	"testing"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(data)
}

func TestCacheWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes", "0+", "7", "console.log")
	c := NewCacheWriter(path)

	for _, s := range []string{"first\n", "second\n"} {
		state, err := c.Append([]byte(s))
		if err != nil {
			t.Fatalf("Append(%q) error = %v", s, err)
		}
		if state != CacheActive {
			t.Fatalf("Append(%q) state = %s, want active", s, state)
		}
	}
	if got := readFile(t, path); got != "first\nsecond\n" {
		t.Errorf("cache = %q, want %q", got, "first\nsecond\n")
	}
}

func TestCacheWriterEmptyAppendCreatesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	c := NewCacheWriter(path)
	if _, err := c.Append(nil); err != nil {
		t.Fatalf("Append(nil) error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("cache file exists after empty append: %v", err)
	}
}

func TestCacheWriterWithdrawnAfterRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	c := NewCacheWriter(path)
	if _, err := c.Append([]byte("Existing data\n")); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	state, err := c.Append([]byte("More console output\n"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if state != CacheWithdrawn {
		t.Errorf("Append() state = %s, want withdrawn", state)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("cache was recreated: %v", err)
	}

	// Withdrawal is permanent even if something else recreates the path.
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Append([]byte("later\n")); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); got != "" {
		t.Errorf("withdrawn cache received data: %q", got)
	}
}

func TestCacheWriterResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	c := NewCacheWriter(path)
	if n, err := c.Resume(); err != nil || n != 0 {
		t.Fatalf("Resume() on missing cache = (%d, %v), want (0, nil)", n, err)
	}

	if err := os.WriteFile(path, []byte("abc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c = NewCacheWriter(path)
	n, err := c.Resume()
	if err != nil || n != 4 {
		t.Fatalf("Resume() = (%d, %v), want (4, nil)", n, err)
	}

	// A resumed cache that disappears counts as withdrawn.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if state, _ := c.Append([]byte("x")); state != CacheWithdrawn {
		t.Errorf("Append() state = %s, want withdrawn", state)
	}
}

func TestCacheWriterKnownCacheNeverCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	if err := os.WriteFile(path, []byte("abc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c := NewCacheWriter(path)
	if _, err := c.Resume(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Append([]byte("def\n")); err != nil {
		t.Fatal(err)
	}
	if c.Size() != 8 {
		t.Errorf("Size() = %d, want 8", c.Size())
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	state, err := c.Append([]byte("ghi\n"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if state != CacheWithdrawn {
		t.Errorf("Append() state = %s, want withdrawn", state)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("known cache was recreated: %v", err)
	}
}
