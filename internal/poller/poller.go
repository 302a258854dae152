package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr1hm/surgery-dashboard/internal/scheduler"
)

// Task performs one poll cycle. seq increases monotonically across every
// cycle the poller starts, so consumers can drop results that were
// superseded by a newer cycle.
type Task func(ctx context.Context, seq uint64)

type task struct {
	name     string
	interval time.Duration
	fn       Task
}

type Poller struct {
	ctx   context.Context
	sched scheduler.Scheduler

	mu      sync.Mutex
	tasks   []task
	tokens  []scheduler.Token
	running bool

	seq atomic.Uint64
}

func New(ctx context.Context, sched scheduler.Scheduler) *Poller {
	return &Poller{
		ctx:   ctx,
		sched: sched,
	}
}

// Register adds a task. Tasks registered while the poller is running are
// scheduled on the next Start.
func (p *Poller) Register(name string, interval time.Duration, fn Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task{name: name, interval: interval, fn: fn})
}

// Start schedules every registered task. It is a no-op while running.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	for _, t := range p.tasks {
		t := t
		slog.Debug("starting poller", "task", t.name, "interval", t.interval)
		p.tokens = append(p.tokens, p.sched.Every(t.interval, func() {
			p.run(t)
		}))
	}
	p.running = true
}

// Stop cancels the timers. Cycles already in flight run to completion.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	for _, tok := range p.tokens {
		tok.Cancel()
	}
	p.tokens = nil
	p.running = false
	slog.Debug("poller stopped")
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// PollNow runs one out-of-band cycle of the named task. It reports false
// when no such task is registered.
func (p *Poller) PollNow(name string) bool {
	p.mu.Lock()
	var found *task
	for i := range p.tasks {
		if p.tasks[i].name == name {
			t := p.tasks[i]
			found = &t
			break
		}
	}
	p.mu.Unlock()

	if found == nil {
		return false
	}
	p.sched.Defer(func() {
		p.run(*found)
	})
	return true
}

// LastSeq is the sequence number handed to the most recent cycle.
func (p *Poller) LastSeq() uint64 {
	return p.seq.Load()
}

func (p *Poller) run(t task) {
	if p.ctx.Err() != nil {
		return
	}
	seq := p.seq.Add(1)
	slog.Debug("polling", "task", t.name, "seq", seq)
	t.fn(p.ctx, seq)
}
