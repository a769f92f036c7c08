// Package audit keeps the append-only record of every push.
package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// TimeLayout is the second-precision local timestamp written to each record.
const TimeLayout = "2006-01-02 15:04:05"

// DefaultPath is where records go relative to the working directory.
var DefaultPath = filepath.Join("recv_logs", "received.jsonl")

// Record is one line of the audit log.
type Record struct {
	Timestamp  string          `json:"ts"`
	URL        string          `json:"url"`
	WebPath    string          `json:"web_path"`
	Mapped     string          `json:"mapped"`
	Meta       json.RawMessage `json:"meta"`
	RemoteAddr string          `json:"remote_addr"`
	UserAgent  string          `json:"user_agent"`
}

// Timestamp formats t the way records store it.
func Timestamp(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// Log appends records to a file that is never truncated or rotated.
type Log struct {
	mu   sync.Mutex
	file afero.File
	path string
}

// Open opens (or creates) the log at path on fsys for appending.
func Open(fsys afero.Fs, path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit log directory %s: %w", dir, err)
		}
	}
	f, err := fsys.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log %s: %w", path, err)
	}
	return &Log{file: f, path: path}, nil
}

// Path returns the file records are appended to.
func (l *Log) Path() string {
	return l.path
}

// Append writes rec as a single JSON line. Each line goes out in one Write
// while holding the lock, so concurrent appends never interleave.
func (l *Log) Append(rec Record) error {
	if len(rec.Meta) == 0 {
		rec.Meta = json.RawMessage("null")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encode terminates the line with '\n'.
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("audit log %s is closed", l.path)
	}
	if _, err := l.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("append to audit log %s: %w", l.path, err)
	}
	return nil
}

// Close closes the underlying file. Appends after Close fail.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
