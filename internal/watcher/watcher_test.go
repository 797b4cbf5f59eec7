package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) record(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "noc.csv")
	if err := writeFile(source, "Level,Code\n"); err != nil {
		t.Fatal(err)
	}

	var changed recorder
	w := NewWatcher([]string{source}, changed.record, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		if err := writeFile(source, "Level,Code\n5,21234\n"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	got := changed.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected one debounced callback, got %d: %v", len(got), got)
	}
	if got[0] != source {
		t.Errorf("callback path = %s, want %s", got[0], source)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "noc.csv")

	var changed recorder
	w := NewWatcher([]string{source}, changed.record, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(dir, "notes.txt"), "unrelated"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := changed.snapshot(); len(got) != 0 {
		t.Errorf("expected no callbacks for unwatched files, got %v", got)
	}

	// A watched file that did not exist at Start is picked up when created.
	if err := writeFile(source, "Level,Code\n"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := changed.snapshot(); len(got) != 1 {
		t.Errorf("expected one callback after creating the watched file, got %v", got)
	}
}

func TestWatcher_ReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "noc.xlsx")
	if err := writeFile(source, "v1"); err != nil {
		t.Fatal(err)
	}

	var changed recorder
	w := NewWatcher([]string{source}, changed.record, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	tmp := filepath.Join(dir, ".noc.xlsx.tmp")
	if err := writeFile(tmp, "v2"); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, source); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := changed.snapshot(); len(got) != 1 {
		t.Errorf("expected one callback after atomic replace, got %v", got)
	}
}

func TestWatcher_RemoveHandler(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "noc.csv")
	if err := writeFile(source, "x"); err != nil {
		t.Fatal(err)
	}

	var changed, removed recorder
	w := NewWatcher([]string{source}, changed.record,
		WithDebounce(50*time.Millisecond), WithRemoveHandler(removed.record))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(source); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := removed.snapshot(); len(got) != 1 || got[0] != source {
		t.Errorf("removed = %v, want [%s]", got, source)
	}
	if got := changed.snapshot(); len(got) != 0 {
		t.Errorf("changed = %v, want none", got)
	}
}

func TestWatcher_AddRemoveFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	w := NewWatcher([]string{a}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.AddFile(b); err != nil {
		t.Fatal(err)
	}
	if err := w.AddFile(b); err != nil {
		t.Fatal(err)
	}
	if got := len(w.Files()); got != 2 {
		t.Errorf("Files() has %d entries, want 2", got)
	}
	if w.dirRefs[dir] != 2 {
		t.Errorf("dirRefs[%s] = %d, want 2", dir, w.dirRefs[dir])
	}

	if err := w.RemoveFile(a); err != nil {
		t.Fatal(err)
	}
	if err := w.RemoveFile(a); err != nil {
		t.Fatal(err)
	}
	files := w.Files()
	if len(files) != 1 || files[0] != b {
		t.Errorf("Files() = %v, want [%s]", files, b)
	}
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent", "noc.csv")
	w := NewWatcher([]string{missing}, nil)
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("expected error when the parent directory does not exist")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher([]string{filepath.Join(t.TempDir(), "noc.csv")}, nil)
	w.Stop()
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
