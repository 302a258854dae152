package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTicker_EveryAndCancel(t *testing.T) {
	s := NewTicker()

	var calls atomic.Int64
	tok := s.Every(5*time.Millisecond, func() {
		calls.Add(1)
	})

	time.Sleep(40 * time.Millisecond)
	tok.Cancel()
	tok.Cancel() // idempotent
	s.Wait()

	got := calls.Load()
	if got == 0 {
		t.Fatal("expected at least one tick")
	}

	time.Sleep(20 * time.Millisecond)
	if calls.Load() != got {
		t.Errorf("callback ran after cancel: %d -> %d", got, calls.Load())
	}
}

func TestTicker_DeferWaits(t *testing.T) {
	s := NewTicker()

	var done atomic.Bool
	s.Defer(func() {
		time.Sleep(10 * time.Millisecond)
		done.Store(true)
	})
	s.Wait()

	if !done.Load() {
		t.Error("Wait returned before deferred callback finished")
	}
}

func TestManual_Advance(t *testing.T) {
	m := NewManual()

	var fast, slow int
	m.Every(10*time.Second, func() { fast++ })
	m.Every(30*time.Second, func() { slow++ })

	m.Advance(9 * time.Second)
	if fast != 0 || slow != 0 {
		t.Fatalf("nothing should fire before the first interval, got fast=%d slow=%d", fast, slow)
	}

	m.Advance(51 * time.Second)
	if fast != 6 {
		t.Errorf("expected 6 fast ticks after 60s, got %d", fast)
	}
	if slow != 2 {
		t.Errorf("expected 2 slow ticks after 60s, got %d", slow)
	}
}

func TestManual_OrderAndCancel(t *testing.T) {
	m := NewManual()

	var order []string
	a := m.Every(10*time.Second, func() { order = append(order, "a") })
	m.Every(15*time.Second, func() { order = append(order, "b") })

	m.Advance(30 * time.Second)
	want := []string{"a", "b", "a", "a", "b"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}

	a.Cancel()
	if m.Active() != 1 {
		t.Errorf("expected 1 active entry, got %d", m.Active())
	}

	order = nil
	m.Advance(30 * time.Second)
	for _, o := range order {
		if o == "a" {
			t.Fatal("cancelled callback fired")
		}
	}
}

func TestManual_Defer(t *testing.T) {
	m := NewManual()

	ran := 0
	m.Defer(func() { ran++ })
	m.Defer(func() { ran++ })

	if ran != 0 {
		t.Fatal("Defer must not run synchronously")
	}
	if n := m.RunPending(); n != 2 {
		t.Errorf("expected 2 pending callbacks, got %d", n)
	}
	if ran != 2 {
		t.Errorf("expected 2 runs, got %d", ran)
	}
}

func TestManual_After(t *testing.T) {
	m := NewManual()

	fired := 0
	m.After(5*time.Second, func() { fired++ })
	tok := m.After(5*time.Second, func() { t.Error("cancelled timer fired") })
	tok.Cancel()

	m.Advance(4 * time.Second)
	if fired != 0 {
		t.Fatal("timer fired early")
	}
	m.Advance(time.Second)
	if fired != 1 {
		t.Fatalf("expected timer to fire once, got %d", fired)
	}
	m.Advance(time.Minute)
	if fired != 1 {
		t.Errorf("one-shot timer fired %d times", fired)
	}
	if m.Active() != 0 {
		t.Errorf("expected no active entries, got %d", m.Active())
	}
	if m.Elapsed() != 65*time.Second {
		t.Errorf("expected 65s elapsed, got %s", m.Elapsed())
	}
}

func TestTicker_AfterAndCancel(t *testing.T) {
	s := NewTicker()

	var fired atomic.Int32
	s.After(10*time.Millisecond, func() { fired.Add(1) })
	tok := s.After(time.Hour, func() { fired.Add(100) })
	tok.Cancel()

	s.Wait()
	if got := fired.Load(); got != 1 {
		t.Errorf("expected only the short timer to fire, got %d", got)
	}
}
