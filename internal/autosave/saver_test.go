package autosave

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/surgery-dashboard/internal/scheduler"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *countingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

type fixture struct {
	sched   *scheduler.Manual
	notes   *countingNotifier
	saver   *Saver
	submits int
	fail    error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{sched: scheduler.NewManual(), notes: &countingNotifier{}}
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base.Add(f.sched.Elapsed()) }

	submit := func(ctx context.Context) error {
		f.submits++
		return f.fail
	}
	f.saver = New(f.sched, submit, f.notes, 5*time.Second, 30*time.Second, WithClock(clock))
	f.saver.Start(context.Background())
	t.Cleanup(f.saver.Stop)
	return f
}

func TestChanged_Debounces(t *testing.T) {
	f := newFixture(t)

	f.saver.Changed()
	f.sched.Advance(3 * time.Second)
	f.saver.Changed()
	f.sched.Advance(3 * time.Second)
	if f.submits != 0 {
		t.Fatalf("saved before edits went quiet: %d", f.submits)
	}

	f.sched.Advance(2 * time.Second)
	if f.submits != 1 {
		t.Fatalf("expected one save 5s after the last change, got %d", f.submits)
	}
	if len(f.notes.msgs) != 1 || f.notes.msgs[0] != savedMessage {
		t.Errorf("expected saved indicator, got %v", f.notes.msgs)
	}
}

func TestPeriodic_SavesWhenStale(t *testing.T) {
	f := newFixture(t)

	// 30s since start is not more than the interval
	f.sched.Advance(30 * time.Second)
	if f.submits != 0 {
		t.Fatalf("expected no save at exactly one interval, got %d", f.submits)
	}

	f.sched.Advance(30 * time.Second)
	if f.submits != 1 {
		t.Fatalf("expected periodic save, got %d", f.submits)
	}
}

func TestPeriodic_SkipsAfterRecentSave(t *testing.T) {
	f := newFixture(t)

	f.sched.Advance(50 * time.Second)
	f.saver.Changed()
	f.sched.Advance(5 * time.Second) // debounced save at 55s
	saves := f.submits

	f.sched.Advance(5 * time.Second) // tick at 60s, last save 5s ago
	if f.submits != saves {
		t.Errorf("periodic tick saved a fresh draft")
	}
}

func TestSaveFailure_KeepsLastSave(t *testing.T) {
	f := newFixture(t)
	f.fail = errors.New("offline")
	before := f.saver.LastSave()

	f.saver.Flush()
	if f.saver.LastSave() != before {
		t.Error("failed save moved last save time")
	}
	if f.saver.Saves() != 0 {
		t.Errorf("expected no successful saves, got %d", f.saver.Saves())
	}
	if len(f.notes.msgs) != 0 {
		t.Errorf("failed save showed indicator: %v", f.notes.msgs)
	}
}

func TestFlush_CancelsPending(t *testing.T) {
	f := newFixture(t)

	f.saver.Changed()
	f.saver.Flush()
	f.sched.Advance(10 * time.Second)

	if f.submits != 1 {
		t.Errorf("expected a single save, got %d", f.submits)
	}
}

func TestStop_CancelsTimers(t *testing.T) {
	f := newFixture(t)

	f.saver.Changed()
	f.saver.Stop()
	f.sched.Advance(time.Minute)

	if f.submits != 0 {
		t.Errorf("saved after Stop: %d", f.submits)
	}
	if f.sched.Active() != 0 {
		t.Errorf("expected no scheduled callbacks, got %d", f.sched.Active())
	}
}

func TestLoadDraft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.yaml")
	doc := `action: /presurgery/1001/edit/
fields:
  peso: 70
  talla: 175.5
  antecedentes_dificultad: false
  comorbilidades: [diabetes, asma]
  notas: null
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDraft(path)
	if err != nil {
		t.Fatalf("LoadDraft failed: %v", err)
	}
	if d.Action != "/presurgery/1001/edit/" {
		t.Errorf("unexpected action %q", d.Action)
	}

	vals := d.Values()
	if vals.Get("auto_save") != "true" {
		t.Error("expected auto_save=true")
	}
	if vals.Get("peso") != "70" || vals.Get("talla") != "175.5" {
		t.Errorf("unexpected measurements: %v", vals)
	}
	if got := vals["comorbilidades"]; len(got) != 2 || got[0] != "diabetes" || got[1] != "asma" {
		t.Errorf("unexpected list encoding: %v", got)
	}
	if vals.Get("antecedentes_dificultad") != "" || vals.Get("notas") != "" {
		t.Errorf("expected empty values for false and null: %v", vals)
	}
}

func TestLoadDraft_NoAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.yaml")
	if err := os.WriteFile(path, []byte("fields:\n  peso: 70\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDraft(path); !errors.Is(err, ErrNoAction) {
		t.Errorf("expected ErrNoAction, got %v", err)
	}
}

func TestWatch_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.yaml")
	if err := os.WriteFile(path, []byte("action: /x/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() { changed <- struct{}{} })
	}()

	// give the watcher time to register
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("action: /y/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Error("no change reported for draft write")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}
