package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileSource reads posts from a JSON-lines file, one post per line. An
// external ingestion step drops the file; this end only consumes it. On
// exhaustion the file handle is released and the path is reopened on the
// next read, so a replaced file is picked up by the next session.
type FileSource struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

func OpenFileSource(path string) (*FileSource, error) {
	s := &FileSource{path: path}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileSource) open() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("opening feed file: %w", err)
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	s.file = f
	s.scanner = sc
	s.line = 0
	return nil
}

// Next returns the next post in the file, ErrExhausted at end of file.
// Blank lines are skipped; a malformed line is a real error since the
// file is machine-written.
func (s *FileSource) Next(ctx context.Context) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.file == nil {
		if err := s.open(); err != nil {
			return nil, err
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading feed file: %w", err)
			}
			s.Close()
			return nil, ErrExhausted
		}
		s.line++
		text := strings.TrimSpace(s.scanner.Text())
		if text == "" {
			continue
		}
		var post Post
		if err := json.Unmarshal([]byte(text), &post); err != nil {
			return nil, fmt.Errorf("feed file line %d: %w", s.line, err)
		}
		return &post, nil
	}
}

func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.scanner = nil
	return err
}

// TemplateResponder cycles through a fixed set of canned responses,
// substituting the author's username for "{author}". Real response
// generation lives behind the Responder boundary elsewhere; this one
// exists for dry runs and tests.
type TemplateResponder struct {
	Templates []string
	next      int
}

func (r *TemplateResponder) Compose(ctx context.Context, post *Post) (string, error) {
	if len(r.Templates) == 0 {
		return "", fmt.Errorf("no response templates configured")
	}
	t := r.Templates[r.next%len(r.Templates)]
	r.next++
	return strings.ReplaceAll(t, "{author}", post.Author.Username), nil
}

// ActionRecord is one action a RecorderActor observed.
type ActionRecord struct {
	PostID   string
	Response string
}

// RecorderActor records actions instead of executing them. Wired in
// place of a real actor for dry runs.
type RecorderActor struct {
	mu      sync.Mutex
	records []ActionRecord
}

func (a *RecorderActor) Execute(ctx context.Context, post *Post, response string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, ActionRecord{PostID: post.ID, Response: response})
	return nil
}

// Records returns a copy of everything recorded so far.
func (a *RecorderActor) Records() []ActionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ActionRecord, len(a.records))
	copy(out, a.records)
	return out
}

// OutboxActor appends each action as a JSON line to an outbox file that
// a downstream executor drains. The append is the action's commit point.
type OutboxActor struct {
	mu   sync.Mutex
	path string
}

func NewOutboxActor(path string) *OutboxActor {
	return &OutboxActor{path: path}
}

type outboxEntry struct {
	PostID   string    `json:"post_id"`
	Author   string    `json:"author"`
	Response string    `json:"response"`
	At       time.Time `json:"at"`
}

func (a *OutboxActor) Execute(ctx context.Context, post *Post, response string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening outbox: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(outboxEntry{
		PostID:   post.ID,
		Author:   post.Author.Username,
		Response: response,
		At:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing outbox: %w", err)
	}
	return nil
}

// FileCapturer writes diagnostic notes into a directory and returns the
// file path as the artifact reference.
type FileCapturer struct {
	Dir string
}

func (c *FileCapturer) Capture(ctx context.Context, reason string) (string, error) {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating capture dir: %w", err)
	}
	now := time.Now().UTC()
	path := filepath.Join(c.Dir, fmt.Sprintf("%s-%s.txt", now.Format("20060102-150405"), reason))
	body := fmt.Sprintf("reason: %s\ncaptured_at: %s\n", reason, now.Format(time.RFC3339))
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return "", fmt.Errorf("writing capture: %w", err)
	}
	return path, nil
}
