package render

import (
	"sync"

	"github.com/mr1hm/surgery-dashboard/internal/models"
)

// Board is the complete visible state of a dashboard.
type Board struct {
	Texts   map[Widget]string
	Charts  map[Chart]Dataset
	Alerts  []models.Alert
	Banner  int
	Flushes int
}

// Clone returns a deep copy with the same visible state.
func (b Board) Clone() Board {
	out := Board{
		Texts:   make(map[Widget]string, len(b.Texts)),
		Charts:  make(map[Chart]Dataset, len(b.Charts)),
		Alerts:  append([]models.Alert(nil), b.Alerts...),
		Banner:  b.Banner,
		Flushes: b.Flushes,
	}
	for k, v := range b.Texts {
		out.Texts[k] = v
	}
	for k, v := range b.Charts {
		out.Charts[k] = Dataset{
			Labels: append([]string(nil), v.Labels...),
			Values: append([]float64(nil), v.Values...),
		}
	}
	return out
}

// MemoryView keeps the board in memory. Terminal and chart views render
// from its snapshots.
type MemoryView struct {
	mu       sync.Mutex
	bound    map[Widget]bool
	board    Board
	onChange func(Board)
}

// NewMemoryView binds the given widgets, or every widget when none are given.
func NewMemoryView(widgets ...Widget) *MemoryView {
	v := &MemoryView{
		board: Board{
			Texts:  make(map[Widget]string),
			Charts: make(map[Chart]Dataset),
		},
	}
	if len(widgets) > 0 {
		v.bound = make(map[Widget]bool, len(widgets))
		for _, w := range widgets {
			v.bound[w] = true
		}
	}
	return v
}

// OnChange registers fn to receive a snapshot after every Flush.
func (v *MemoryView) OnChange(fn func(Board)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

func (v *MemoryView) SetText(w Widget, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.bound != nil && !v.bound[w] {
		return
	}
	v.board.Texts[w] = text
}

func (v *MemoryView) SetDataset(c Chart, ds Dataset) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.board.Charts[c] = Dataset{
		Labels: append([]string(nil), ds.Labels...),
		Values: append([]float64(nil), ds.Values...),
	}
}

func (v *MemoryView) SetAlerts(alerts []models.Alert) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.board.Alerts = append([]models.Alert(nil), alerts...)
}

func (v *MemoryView) SetBanner(count int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.board.Banner = count
}

func (v *MemoryView) Flush() {
	v.mu.Lock()
	v.board.Flushes++
	snap := v.board.Clone()
	fn := v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

func (v *MemoryView) Snapshot() Board {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.board.Clone()
}
