package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fennwick/murmur/internal/session"
)

func summaryAt(id string, start time.Time) session.Summary {
	return session.Summary{
		ID:        id,
		StartedAt: start,
		EndedAt:   start.Add(20 * time.Minute),
		Status:    session.Completed,
		Reason:    "item limit reached",
	}
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("new log has %d entries, want 0", l.Len())
	}
}

func TestAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := l.Append(summaryAt("s"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reloaded.Len() != 3 {
		t.Fatalf("reloaded log has %d entries, want 3", reloaded.Len())
	}
	got := reloaded.Recent(0)
	if got[0].ID != "sa" || got[2].ID != "sc" {
		t.Errorf("entries out of order: %q ... %q", got[0].ID, got[2].ID)
	}
}

func TestRecentLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ids := []string{"one", "two", "three", "four"}
	for i, id := range ids {
		if err := l.Append(summaryAt(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got := l.Recent(2)
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(got))
	}
	if got[0].ID != "three" || got[1].ID != "four" {
		t.Errorf("Recent(2) = %q, %q; want three, four", got[0].ID, got[1].ID)
	}

	if got := l.Recent(100); len(got) != 4 {
		t.Errorf("Recent(100) returned %d entries, want 4", len(got))
	}
}
