package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mr1hm/surgery-dashboard/internal/models"
	"github.com/mr1hm/surgery-dashboard/internal/notify"
	"github.com/mr1hm/surgery-dashboard/internal/render"
)

type fakeController struct {
	dismissed []string
	exports   []string
	refreshes int
	dateRange int
	hidden    int
	visible   int
	exportErr error
}

func (f *fakeController) Dismiss(id string) bool {
	f.dismissed = append(f.dismissed, id)
	return true
}

func (f *fakeController) Export(dir string) error {
	f.exports = append(f.exports, dir)
	return f.exportErr
}

func (f *fakeController) RefreshNow() { f.refreshes++ }

func (f *fakeController) SetDateRange(days int) error {
	f.dateRange = days
	return nil
}

func (f *fakeController) DateRange() int { return f.dateRange }
func (f *fakeController) Hidden()        { f.hidden++ }
func (f *fakeController) Visible()       { f.visible++ }

func testBoard() render.Board {
	return render.Board{
		Texts: map[render.Widget]string{
			render.WidgetTotalPatients: "120",
			render.WidgetRiskCritical:  "10 (8.3%)",
			render.WidgetLastUpdate:    "Updated at 09:30",
		},
		Charts: map[render.Chart]render.Dataset{},
		Alerts: []models.Alert{
			{ID: "alert_1001", Folio: "1001", PatientName: "Ana García", Severity: models.AlertSeverityCritical, RiskScore: 95, RiskFactors: []string{"ASA 4"}},
			{ID: "alert_1002", Folio: "1002", PatientName: "Luis Pérez", Severity: models.AlertSeverityHigh, RiskScore: 72},
		},
		Banner: 1,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", next)
	}
	return out, cmd
}

func TestModel_DismissSelected(t *testing.T) {
	ctrl := &fakeController{dateRange: 30}
	m := New(ctrl, "/tmp")
	m, _ = update(t, m, BoardMsg(testBoard()))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, runes("d"))

	if len(ctrl.dismissed) != 1 || ctrl.dismissed[0] != "alert_1002" {
		t.Errorf("expected alert_1002 dismissed, got %v", ctrl.dismissed)
	}

	m, _ = update(t, m, runes("k"))
	if a, _ := m.Selected(); a.ID != "alert_1001" {
		t.Errorf("expected cursor back on alert_1001, got %s", a.ID)
	}
}

func TestModel_CursorClampsWhenBoardShrinks(t *testing.T) {
	ctrl := &fakeController{dateRange: 30}
	m := New(ctrl, "")
	m, _ = update(t, m, BoardMsg(testBoard()))
	m, _ = update(t, m, runes("j"))

	shrunk := testBoard()
	shrunk.Alerts = shrunk.Alerts[:1]
	m, _ = update(t, m, BoardMsg(shrunk))

	a, ok := m.Selected()
	if !ok || a.ID != "alert_1001" {
		t.Errorf("expected cursor clamped to alert_1001, got %+v", a)
	}

	m, _ = update(t, m, BoardMsg(render.Board{}))
	if _, ok := m.Selected(); ok {
		t.Error("expected no selection on an empty board")
	}
	m, _ = update(t, m, runes("d"))
	if len(ctrl.dismissed) != 0 {
		t.Errorf("expected no dismissal without alerts, got %v", ctrl.dismissed)
	}
}

func TestModel_FocusDrivesVisibility(t *testing.T) {
	ctrl := &fakeController{dateRange: 30}
	m := New(ctrl, "")

	m, _ = update(t, m, tea.BlurMsg{})
	m, _ = update(t, m, tea.FocusMsg{})

	if ctrl.hidden != 1 || ctrl.visible != 1 {
		t.Errorf("expected one hidden and one visible, got %d and %d", ctrl.hidden, ctrl.visible)
	}
}

func TestModel_Actions(t *testing.T) {
	ctrl := &fakeController{dateRange: 30, exportErr: errors.New("queue full")}
	m := New(ctrl, "/exports")

	m, _ = update(t, m, runes("r"))
	m, _ = update(t, m, runes("e"))
	m, _ = update(t, m, runes("f"))

	if ctrl.refreshes != 1 {
		t.Errorf("expected 1 refresh, got %d", ctrl.refreshes)
	}
	if len(ctrl.exports) != 1 || ctrl.exports[0] != "/exports" {
		t.Errorf("unexpected exports %v", ctrl.exports)
	}
	if ctrl.dateRange != 90 {
		t.Errorf("expected 30 -> 90, got %d", ctrl.dateRange)
	}

	m, _ = update(t, m, runes("f"))
	if ctrl.dateRange != 7 {
		t.Errorf("expected 90 -> 7, got %d", ctrl.dateRange)
	}

	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestNextDateRange(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{7, 30},
		{30, 90},
		{90, 7},
		{14, 7},
	}
	for _, tt := range tests {
		if got := nextDateRange(tt.current); got != tt.want {
			t.Errorf("nextDateRange(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestModel_NoticesExpire(t *testing.T) {
	m := New(&fakeController{dateRange: 30}, "")

	n := notify.New(notify.LevelSuccess, "Alert dismissed")
	m, cmd := update(t, m, NoticeMsg(n))
	if cmd == nil {
		t.Fatal("expected expiry tick")
	}
	if !strings.Contains(m.View(), "Alert dismissed") {
		t.Error("expected notice in view")
	}

	m, _ = update(t, m, noticeExpiredMsg{id: n.ID})
	if strings.Contains(m.View(), "Alert dismissed") {
		t.Error("expected notice removed after expiry")
	}
}

func TestModel_NoticesCapped(t *testing.T) {
	m := New(&fakeController{dateRange: 30}, "")
	for i := 0; i < maxNotices+2; i++ {
		m, _ = update(t, m, NoticeMsg(notify.New(notify.LevelInfo, "n")))
	}
	if len(m.notices) != maxNotices {
		t.Errorf("expected %d notices, got %d", maxNotices, len(m.notices))
	}
}

func TestModel_View(t *testing.T) {
	m := New(&fakeController{dateRange: 30}, "")
	if !strings.Contains(m.View(), "No active alerts") {
		t.Error("expected empty alert list message")
	}

	m, _ = update(t, m, BoardMsg(testBoard()))
	view := m.View()
	for _, want := range []string{
		"1 critical alert(s)",
		"Ana García",
		"Luis Pérez",
		"ASA 4",
		"Updated at 09:30",
		"10 (8.3%)",
		"last 30 days",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	noBanner := testBoard()
	noBanner.Banner = 0
	m, _ = update(t, m, BoardMsg(noBanner))
	if strings.Contains(m.View(), "critical alert(s)") {
		t.Error("expected banner removed")
	}
}

type recorder struct {
	got chan tea.Msg
}

func (r recorder) Init() tea.Cmd { return nil }

func (r recorder) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case BoardMsg, NoticeMsg:
		r.got <- msg
	}
	return r, nil
}

func (r recorder) View() string { return "" }

func TestBind_ForwardsBoardsAndNotices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := recorder{got: make(chan tea.Msg, 8)}
	p := tea.NewProgram(rec,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run()
	}()
	defer func() {
		p.Quit()
		<-done
	}()

	view := render.NewMemoryView()
	notes := make(chan notify.Notification, 1)
	Bind(ctx, p, view, notes)

	view.SetBanner(2)
	view.Flush()
	notes <- notify.New(notify.LevelError, "boom")

	var sawBoard, sawNotice bool
	timeout := time.After(2 * time.Second)
	for !sawBoard || !sawNotice {
		select {
		case msg := <-rec.got:
			switch msg := msg.(type) {
			case BoardMsg:
				if msg.Banner != 2 {
					t.Errorf("expected banner 2, got %d", msg.Banner)
				}
				sawBoard = true
			case NoticeMsg:
				if msg.Message != "boom" {
					t.Errorf("expected boom, got %q", msg.Message)
				}
				sawNotice = true
			}
		case <-timeout:
			t.Fatalf("timed out: board=%v notice=%v", sawBoard, sawNotice)
		}
	}
}
