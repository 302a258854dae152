// Package autosave submits form drafts in the background: shortly after the
// last edit, periodically while the draft goes unsaved, and once on exit.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mr1hm/surgery-dashboard/internal/scheduler"
)

const savedMessage = "Saved automatically"

// SubmitFunc sends the current draft to the server.
type SubmitFunc func(ctx context.Context) error

type Notifier interface {
	Success(msg string)
}

type Option func(*Saver)

func WithClock(now func() time.Time) Option {
	return func(s *Saver) { s.now = now }
}

type Saver struct {
	sched    scheduler.Scheduler
	submit   SubmitFunc
	notify   Notifier
	debounce time.Duration
	interval time.Duration
	now      func() time.Time

	saveMu sync.Mutex

	mu       sync.Mutex
	ctx      context.Context
	pending  scheduler.Token
	periodic scheduler.Token
	lastSave time.Time
	saves    int
}

func New(sched scheduler.Scheduler, submit SubmitFunc, notifier Notifier, debounce, interval time.Duration, opts ...Option) *Saver {
	s := &Saver{
		sched:    sched,
		submit:   submit,
		notify:   notifier,
		debounce: debounce,
		interval: interval,
		now:      time.Now,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSave = s.now()
	return s
}

// Start begins the periodic check. A save is made on a tick when more than
// the interval has passed since the last successful save.
func (s *Saver) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.periodic != nil {
		return
	}
	s.ctx = ctx
	s.periodic = s.sched.Every(s.interval, func() {
		if s.due() {
			s.save()
		}
	})
}

// Changed restarts the debounce timer. The draft is saved once edits have
// been quiet for the debounce period.
func (s *Saver) Changed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Cancel()
	}
	s.pending = s.sched.After(s.debounce, s.save)
}

// Flush cancels any pending debounce and saves right away.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
	s.mu.Unlock()

	s.save()
}

// Stop cancels the timers without saving.
func (s *Saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
	if s.periodic != nil {
		s.periodic.Cancel()
		s.periodic = nil
	}
}

func (s *Saver) LastSave() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}

// Saves counts successful saves.
func (s *Saver) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Saver) due() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.lastSave) > s.interval
}

func (s *Saver) save() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if err := s.submit(ctx); err != nil {
		slog.Error("auto-save failed", "error", err)
		return
	}

	s.mu.Lock()
	s.lastSave = s.now()
	s.saves++
	s.mu.Unlock()

	slog.Debug("draft auto-saved")
	if s.notify != nil {
		s.notify.Success(savedMessage)
	}
}
