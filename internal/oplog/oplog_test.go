package oplog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogOperation_WritesDateStampedFile(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)
	w.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}

	if err := w.LogOperation("192.168.1.50", 1, "open", "configure: ok; control: ok"); err != nil {
		t.Fatalf("LogOperation() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "door-2026-03-14.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	line := string(data)
	for _, want := range []string{"2026-03-14T09:26:53", "device=192.168.1.50", "door=1", "state=open", "configure: ok"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %q: %s", want, line)
		}
	}
}

func TestLogOperation_AppendsAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	w.LogOperation("192.168.1.50", 1, "open", "ok")
	w.LogOperation("192.168.1.51", 2, "close", "ok")

	data, _ := os.ReadFile(filepath.Join(dir, "door-2026-03-14.log"))
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Errorf("log lines = %d, want 2", got)
	}
}

func TestLogOperation_RollsOverByDate(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)

	day := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return day }
	w.LogOperation("192.168.1.50", 1, "open", "ok")

	day = day.Add(2 * time.Minute)
	w.LogOperation("192.168.1.50", 1, "resume", "ok")

	if _, err := os.Stat(filepath.Join(dir, "door-2026-03-14.log")); err != nil {
		t.Error("first day's file missing")
	}
	if _, err := os.Stat(filepath.Join(dir, "door-2026-03-15.log")); err != nil {
		t.Error("second day's file missing")
	}
}

func TestLogOperation_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	w := New(dir)

	if err := w.LogOperation("192.168.1.50", 1, "open", "ok"); err != nil {
		t.Fatalf("LogOperation() error = %v", err)
	}
}

func TestLogOperation_UnwritableDirReportsError(t *testing.T) {
	// A file where the directory should be makes MkdirAll fail
	base := t.TempDir()
	blocker := filepath.Join(base, "logs")
	os.WriteFile(blocker, []byte("x"), 0644)

	w := New(blocker)
	if err := w.LogOperation("192.168.1.50", 1, "open", "ok"); err == nil {
		t.Error("LogOperation() should report an unwritable directory")
	}
}
