package cli

import (
	"testing"
	"testing/fstest"
)

func TestListCachedLogs(t *testing.T) {
	fsys := fstest.MapFS{
		"recipes/1+/1234/console.log": {Data: []byte("hello\n")},
		"recipes/0+/7/console.log":    {Data: []byte("a")},
		"recipes/0+/7/other.log":      {Data: []byte("ignored")},
		"recipes/0+/junk/console.log": {Data: []byte("not a run")},
		"recipes/console.log":         {Data: []byte("too shallow")},
	}

	logs, err := listCachedLogs(fsys)
	if err != nil {
		t.Fatalf("listCachedLogs() error = %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %+v, want 2", logs)
	}
	if logs[0].RunID != 7 || logs[0].Size != 1 || logs[0].Path != "recipes/0+/7/console.log" {
		t.Errorf("logs[0] = %+v", logs[0])
	}
	if logs[1].RunID != 1234 || logs[1].Size != 6 {
		t.Errorf("logs[1] = %+v", logs[1])
	}
}

func TestListCachedLogsEmpty(t *testing.T) {
	logs, err := listCachedLogs(fstest.MapFS{})
	if err != nil {
		t.Fatalf("listCachedLogs() error = %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("logs = %+v, want none", logs)
	}
}
