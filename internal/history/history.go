// Package history persists session summaries so past runs survive daemon
// restarts and are queryable over IPC.
package history

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/fennwick/murmur/internal/session"
)

// Log handles reading and writing the history file safely.
type Log struct {
	path    string
	mu      sync.Mutex
	entries []session.Summary
}

// Open loads or initializes a history log at path.
func Open(path string) (*Log, error) {
	l := &Log{path: path}

	if err := l.load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := l.save(); err != nil {
				return nil, err
			}
			return l, nil
		}
		return nil, err
	}

	return l, nil
}

// load reads the history file into memory.
func (l *Log) load() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}

	var entries []session.Summary
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	l.entries = entries
	return nil
}

// save atomically writes the history file to disk.
func (l *Log) save() error {
	tmp := l.path + ".tmp"
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, l.path)
}

// Append records a finished session and persists immediately.
func (l *Log) Append(s session.Summary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, s)
	return l.save()
}

// Recent returns the last n summaries, newest last. n <= 0 returns all.
func (l *Log) Recent(n int) []session.Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n >= len(l.entries) {
		n = len(l.entries)
	}
	out := make([]session.Summary, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}

// Len reports how many sessions have been recorded.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
