package scheduler

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by Advance and RunPending. Callbacks run
// synchronously on the caller's goroutine, in due-time order.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  int
	entries map[int]*manualEntry
	pending []func()
}

type manualEntry struct {
	id       int
	interval time.Duration
	next     time.Duration
	once     bool
	fn       func()
}

type manualToken struct {
	m  *Manual
	id int
}

func (t manualToken) Cancel() {
	t.m.mu.Lock()
	delete(t.m.entries, t.id)
	t.m.mu.Unlock()
}

var _ Scheduler = (*Manual)(nil)

func NewManual() *Manual {
	return &Manual{entries: make(map[int]*manualEntry)}
}

func (m *Manual) Every(interval time.Duration, fn func()) Token {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.entries[m.nextID] = &manualEntry{
		id:       m.nextID,
		interval: interval,
		next:     m.now + interval,
		fn:       fn,
	}
	return manualToken{m: m, id: m.nextID}
}

func (m *Manual) After(d time.Duration, fn func()) Token {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.entries[m.nextID] = &manualEntry{
		id:   m.nextID,
		next: m.now + d,
		once: true,
		fn:   fn,
	}
	return manualToken{m: m, id: m.nextID}
}

func (m *Manual) Defer(fn func()) {
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

// RunPending runs the deferred callbacks queued so far and returns how many ran.
func (m *Manual) RunPending() int {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// Advance moves the clock forward by d, firing every interval callback that
// falls due, then runs pending deferred callbacks.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		e := m.nextDue(target)
		if e == nil {
			m.now = target
			m.mu.Unlock()
			break
		}
		m.now = e.next
		if e.once {
			delete(m.entries, e.id)
		} else {
			e.next += e.interval
		}
		fn := e.fn
		m.mu.Unlock()

		fn()
	}

	m.RunPending()
}

// Elapsed is how far the clock has been advanced.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Active reports how many callbacks are still scheduled.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// nextDue returns the earliest entry due at or before target. Registration
// order breaks ties. Caller holds mu.
func (m *Manual) nextDue(target time.Duration) *manualEntry {
	var due *manualEntry
	for _, e := range m.entries {
		if e.next > target {
			continue
		}
		if due == nil || e.next < due.next || (e.next == due.next && e.id < due.id) {
			due = e
		}
	}
	return due
}
