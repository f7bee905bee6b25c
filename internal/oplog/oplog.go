// Package oplog appends one audit line per door operation to a
// date-stamped log file. The writer is a collaborator of the control core:
// a failed append is reported to the caller but must never abort the
// operation that produced it.
package oplog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Writer appends operation lines to door-YYYY-MM-DD.log files in Dir.
// The file rolls over naturally at midnight because the date is part of
// the name. Appends are serialized; the log file is the only shared
// resource the callers contend on.
type Writer struct {
	// Dir is the directory log files are written to
	Dir string

	mu sync.Mutex

	// now is replaceable in tests
	now func() time.Time
}

// New creates a Writer appending into dir.
func New(dir string) *Writer {
	return &Writer{Dir: dir, now: time.Now}
}

// LogOperation appends one line with timestamp, device address, door index,
// state name, and the result message.
func (w *Writer) LogOperation(host string, doorNo int, state, message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	ts := w.now()
	path := filepath.Join(w.Dir, fmt.Sprintf("door-%s.log", ts.Format("2006-01-02")))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	line := fmt.Sprintf("%s device=%s door=%d state=%s result=%q\n",
		ts.Format(time.RFC3339), host, doorNo, state, message)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append log line: %w", err)
	}

	return nil
}
