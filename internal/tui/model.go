// Package tui renders a dashboard board in the terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mr1hm/surgery-dashboard/internal/models"
	"github.com/mr1hm/surgery-dashboard/internal/notify"
	"github.com/mr1hm/surgery-dashboard/internal/render"
)

const (
	noticeTTL  = 3 * time.Second
	maxNotices = 3
)

// DateRanges are the stats windows the date range key cycles through.
var DateRanges = []int{7, 30, 90}

// Controller is the part of a running dashboard the terminal drives.
type Controller interface {
	Dismiss(id string) bool
	Export(dir string) error
	RefreshNow()
	SetDateRange(days int) error
	DateRange() int
	Hidden()
	Visible()
}

// BoardMsg carries a fresh board snapshot into the program.
type BoardMsg render.Board

// NoticeMsg carries a notification into the program.
type NoticeMsg notify.Notification

type noticeExpiredMsg struct{ id string }

type Model struct {
	ctrl      Controller
	keys      KeyMap
	exportDir string

	board   render.Board
	cursor  int
	notices []notify.Notification
	width   int
}

func New(ctrl Controller, exportDir string) Model {
	return Model{
		ctrl:      ctrl,
		keys:      DefaultKeyMap,
		exportDir: exportDir,
		board: render.Board{
			Texts:  map[render.Widget]string{},
			Charts: map[render.Chart]render.Dataset{},
		},
	}
}

// Bind forwards board redraws and notifications into p until ctx is done.
// Redraws never block the view: only the latest board waits to be sent.
func Bind(ctx context.Context, p *tea.Program, view *render.MemoryView, notes <-chan notify.Notification) {
	var (
		mu     sync.Mutex
		latest render.Board
	)
	ready := make(chan struct{}, 1)

	view.OnChange(func(b render.Board) {
		mu.Lock()
		latest = b
		mu.Unlock()
		select {
		case ready <- struct{}{}:
		default:
		}
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ready:
				mu.Lock()
				b := latest
				mu.Unlock()
				p.Send(BoardMsg(b))
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-notes:
				if !ok {
					return
				}
				p.Send(NoticeMsg(n))
			}
		}
	}()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.FocusMsg:
		m.ctrl.Visible()

	case tea.BlurMsg:
		m.ctrl.Hidden()

	case BoardMsg:
		m.board = render.Board(msg)
		m.clampCursor()

	case NoticeMsg:
		n := notify.Notification(msg)
		m.notices = append(m.notices, n)
		if len(m.notices) > maxNotices {
			m.notices = m.notices[len(m.notices)-maxNotices:]
		}
		return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg {
			return noticeExpiredMsg{id: n.ID}
		})

	case noticeExpiredMsg:
		for i, n := range m.notices {
			if n.ID == msg.id {
				m.notices = append(m.notices[:i:i], m.notices[i+1:]...)
				break
			}
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.board.Alerts)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Dismiss):
		if a, ok := m.Selected(); ok {
			m.ctrl.Dismiss(a.ID)
		}

	case key.Matches(msg, m.keys.Refresh):
		m.ctrl.RefreshNow()

	case key.Matches(msg, m.keys.Export):
		if err := m.ctrl.Export(m.exportDir); err != nil {
			slog.Error("error starting export", "error", err)
		}

	case key.Matches(msg, m.keys.DateRange):
		next := nextDateRange(m.ctrl.DateRange())
		if err := m.ctrl.SetDateRange(next); err != nil {
			slog.Error("error changing date range", "days", next, "error", err)
		}
	}
	return m, nil
}

// Selected returns the alert under the cursor.
func (m Model) Selected() (models.Alert, bool) {
	if m.cursor < 0 || m.cursor >= len(m.board.Alerts) {
		return models.Alert{}, false
	}
	return m.board.Alerts[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.board.Alerts) {
		m.cursor = len(m.board.Alerts) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func nextDateRange(current int) int {
	for i, d := range DateRanges {
		if d == current {
			return DateRanges[(i+1)%len(DateRanges)]
		}
	}
	return DateRanges[0]
}

func (m Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("Surgery Dashboard")
	if updated := m.board.Texts[render.WidgetLastUpdate]; updated != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", mutedStyle.Render(updated))
	}
	b.WriteString(header)
	b.WriteString("\n")

	if m.board.Banner > 0 {
		b.WriteString(bannerStyle.Render(fmt.Sprintf("%d critical alert(s) require attention", m.board.Banner)))
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.card("Patients", render.WidgetTotalPatients, render.WidgetActivePatients),
		m.card("Surgeries", render.WidgetSurgeriesCompleted, render.WidgetPendingSurgeries),
		m.card("Risk", render.WidgetRiskLow, render.WidgetRiskModerate, render.WidgetRiskHigh, render.WidgetRiskCritical),
		m.card("Alerts", render.WidgetAlertsTotal, render.WidgetAlertsCritical, render.WidgetAlertsHigh),
	))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Range: last %d days", m.ctrl.DateRange())))
	b.WriteString("\n\n")

	b.WriteString(m.alertList())

	for _, n := range m.notices {
		b.WriteString("\n")
		b.WriteString(noticeStyle(n.Level).Render(n.Message))
	}

	b.WriteString(helpStyle.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

var widgetLabels = map[render.Widget]string{
	render.WidgetTotalPatients:      "total",
	render.WidgetActivePatients:     "active",
	render.WidgetSurgeriesCompleted: "completed",
	render.WidgetPendingSurgeries:   "pending",
	render.WidgetRiskLow:            "low",
	render.WidgetRiskModerate:       "moderate",
	render.WidgetRiskHigh:           "high",
	render.WidgetRiskCritical:       "critical",
	render.WidgetAlertsTotal:        "total",
	render.WidgetAlertsCritical:     "critical",
	render.WidgetAlertsHigh:         "high",
}

func (m Model) card(title string, widgets ...render.Widget) string {
	lines := []string{selectedStyle.Render(title)}
	for _, w := range widgets {
		val, ok := m.board.Texts[w]
		if !ok {
			val = "-"
		}
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render(widgetLabels[w]+":"), val))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) alertList() string {
	if len(m.board.Alerts) == 0 {
		return mutedStyle.Render("No active alerts")
	}

	var b strings.Builder
	for i, a := range m.board.Alerts {
		cursor := "  "
		name := a.PatientName
		if i == m.cursor {
			cursor = "> "
			name = selectedStyle.Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s %s (%.0f)",
			cursor,
			severityStyle(a.Severity).Render(fmt.Sprintf("%-8s", a.Severity)),
			a.Folio,
			name,
			a.RiskScore,
		)
		if len(a.RiskFactors) > 0 {
			b.WriteString(" ")
			b.WriteString(mutedStyle.Render(strings.Join(a.RiskFactors, ", ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) help() string {
	var parts []string
	for _, k := range m.keys.bindings() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
