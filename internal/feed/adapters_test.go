package feed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.jsonl")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSourceReadsLines(t *testing.T) {
	path := writeFeedFile(t, `
{"id":"a","text":"first","language":"en"}

{"id":"b","text":"second","language":"en"}
`)
	src, err := OpenFileSource(path)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	first, err := src.Next(ctx)
	if err != nil || first.ID != "a" {
		t.Fatalf("first Next = %v, %v; want post a", first, err)
	}
	second, err := src.Next(ctx)
	if err != nil || second.ID != "b" {
		t.Fatalf("second Next = %v, %v; want post b", second, err)
	}
	if _, err := src.Next(ctx); !errors.Is(err, ErrExhausted) {
		t.Errorf("Next past end = %v, want ErrExhausted", err)
	}

	// Exhaustion releases the handle; the next read starts over.
	again, err := src.Next(ctx)
	if err != nil || again.ID != "a" {
		t.Errorf("Next after exhaustion = %v, %v; want post a again", again, err)
	}
}

func TestFileSourceMalformedLine(t *testing.T) {
	path := writeFeedFile(t, "{not json}\n")
	src, err := OpenFileSource(path)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	defer src.Close()

	if _, err := src.Next(context.Background()); err == nil {
		t.Error("expected an error for a malformed line")
	}
}

func TestFileSourceHonorsContext(t *testing.T) {
	path := writeFeedFile(t, `{"id":"a","text":"x","language":"en"}`+"\n")
	src, err := OpenFileSource(path)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next with canceled ctx = %v, want context.Canceled", err)
	}
}

func TestTemplateResponderCyclesAndSubstitutes(t *testing.T) {
	r := &TemplateResponder{Templates: []string{"hi {author}", "well said"}}
	post := &Post{ID: "p", Author: Author{Username: "mira"}}

	got, err := r.Compose(context.Background(), post)
	if err != nil || got != "hi mira" {
		t.Fatalf("first Compose = %q, %v", got, err)
	}
	got, _ = r.Compose(context.Background(), post)
	if got != "well said" {
		t.Errorf("second Compose = %q, want cycling to next template", got)
	}
	got, _ = r.Compose(context.Background(), post)
	if got != "hi mira" {
		t.Errorf("third Compose = %q, want wrap-around", got)
	}
}

func TestTemplateResponderRequiresTemplates(t *testing.T) {
	r := &TemplateResponder{}
	if _, err := r.Compose(context.Background(), &Post{}); err == nil {
		t.Error("expected an error with no templates")
	}
}

func TestOutboxActorAppendsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.jsonl")
	a := NewOutboxActor(path)

	ctx := context.Background()
	post := &Post{ID: "p1", Author: Author{Username: "mira"}}
	if err := a.Execute(ctx, post, "first"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if err := a.Execute(ctx, &Post{ID: "p2"}, "second"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Errorf("outbox has %d lines, want 2", lines)
	}
}

func TestFileCapturerWritesArtifact(t *testing.T) {
	c := &FileCapturer{Dir: filepath.Join(t.TempDir(), "captures")}
	path, err := c.Capture(context.Background(), "challenge")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("artifact not readable: %v", err)
	}
	if len(data) == 0 {
		t.Error("artifact is empty")
	}
}

func TestRecorderActorRecords(t *testing.T) {
	a := &RecorderActor{}
	post := &Post{ID: "p1"}
	if err := a.Execute(context.Background(), post, "a reply"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	records := a.Records()
	if len(records) != 1 || records[0].PostID != "p1" || records[0].Response != "a reply" {
		t.Errorf("Records() = %+v", records)
	}
}
