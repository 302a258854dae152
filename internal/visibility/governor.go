package visibility

import (
	"log/slog"
	"sync"
)

type State int

const (
	Active State = iota
	Suspended
)

func (s State) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Suspended:
		return "SUSPENDED"
	default:
		return "UNKNOWN"
	}
}

// Poller is the part of the poller the governor drives.
type Poller interface {
	Start()
	Stop()
	PollNow(name string) bool
}

// Governor suspends polling while the dashboard is not visible. Becoming
// visible again resumes the timers and runs one immediate poll of the
// resume task so the screen is not stale.
type Governor struct {
	poller     Poller
	resumeTask string

	mu    sync.Mutex
	state State
}

// New returns a governor in the ACTIVE state. Call Activate to start the
// poller's timers.
func New(p Poller, resumeTask string) *Governor {
	return &Governor{
		poller:     p,
		resumeTask: resumeTask,
		state:      Active,
	}
}

// Activate starts the timers for the initial ACTIVE state.
func (g *Governor) Activate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Active {
		g.poller.Start()
	}
}

func (g *Governor) Hidden() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Suspended {
		return
	}
	g.poller.Stop()
	g.state = Suspended
	slog.Info("dashboard hidden, polling suspended")
}

func (g *Governor) Visible() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Active {
		return
	}
	g.poller.Start()
	g.poller.PollNow(g.resumeTask)
	g.state = Active
	slog.Info("dashboard visible, polling resumed")
}

func (g *Governor) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
