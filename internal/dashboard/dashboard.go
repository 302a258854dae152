// Package dashboard owns one running dashboard: its poller, alert store,
// render sync and visibility governor, and the worker pool that carries
// dismissals and exports to the server.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr1hm/surgery-dashboard/internal/alerts"
	"github.com/mr1hm/surgery-dashboard/internal/config"
	"github.com/mr1hm/surgery-dashboard/internal/models"
	"github.com/mr1hm/surgery-dashboard/internal/poller"
	"github.com/mr1hm/surgery-dashboard/internal/render"
	"github.com/mr1hm/surgery-dashboard/internal/scheduler"
	"github.com/mr1hm/surgery-dashboard/internal/visibility"
	"github.com/mr1hm/surgery-dashboard/internal/worker"
)

const (
	TaskAlerts = "alerts"
	TaskStats  = "stats"
)

const (
	msgRefreshFailed = "Error refreshing dashboard data"
	msgDismissed     = "Alert dismissed"
	msgDismissFailed = "Error dismissing alert"
	msgExportFailed  = "Error exporting dashboard"
)

// API is the subset of the dashboard client the dashboard calls.
type API interface {
	FetchStats(ctx context.Context, days int) (*models.DashboardStats, error)
	FetchAlerts(ctx context.Context) (*models.AlertsPayload, error)
	DismissAlert(ctx context.Context, id string) error
	Export(ctx context.Context, dir string, now time.Time) (string, error)
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

type snapshotter interface {
	Snapshot() render.Board
}

type Option func(*Dashboard)

// WithClock overrides the clock used for "last update" and export names.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

type Dashboard struct {
	cfg    *config.Config
	api    API
	view   render.View
	notify Notifier
	now    func() time.Time

	store  *alerts.Store
	sync   *render.Sync
	poller *poller.Poller
	gov    *visibility.Governor
	pool   *worker.WorkerPool

	ctx    context.Context
	cancel context.CancelFunc

	// pollCancel aborts in-flight fetches on Stop; pool jobs keep ctx.
	pollCancel context.CancelFunc

	// renderMu keeps a store change and the redraw that follows it together.
	renderMu sync.Mutex

	mu       sync.Mutex
	started  bool
	stopped  bool
	inflight sync.WaitGroup

	dateRange atomic.Int64
}

func New(cfg *config.Config, api API, view render.View, sched scheduler.Scheduler, notifier Notifier, opts ...Option) *Dashboard {
	d := &Dashboard{
		cfg:    cfg,
		api:    api,
		view:   view,
		notify: notifier,
		now:    time.Now,
		store:  alerts.NewStore(),
		pool:   worker.NewWorkerPool(cfg.Worker.Count, cfg.Worker.BufferSize),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	pollCtx, pollCancel := context.WithCancel(d.ctx)
	d.pollCancel = pollCancel
	d.sync = render.NewSync(view, render.NewFormatter(cfg.Client.Locale), render.WithClock(d.now))
	d.dateRange.Store(int64(cfg.Client.DateRangeDays))

	d.poller = poller.New(pollCtx, sched)
	d.poller.Register(TaskAlerts, cfg.Polling.AlertsInterval, d.track(d.pollAlerts))
	d.poller.Register(TaskStats, cfg.Polling.StatsInterval, d.track(d.pollStats))
	d.gov = visibility.New(d.poller, TaskAlerts)

	return d
}

// Start loads alerts and stats once, then starts the timers and the worker
// pool. Cancelling ctx skips any cycle that has not started yet.
func (d *Dashboard) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started || d.stopped {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	context.AfterFunc(ctx, d.cancel)

	d.pool.Start(d.ctx)
	d.poller.PollNow(TaskAlerts)
	d.poller.PollNow(TaskStats)
	d.gov.Activate()

	slog.Info("dashboard started",
		"alerts_interval", d.cfg.Polling.AlertsInterval,
		"stats_interval", d.cfg.Polling.StatsInterval,
		"date_range", d.DateRange(),
	)
}

// Stop cancels the timers, aborts and waits for in-flight polls, then
// drains the worker pool. Visibility changes after Stop are ignored. It is
// safe to call more than once.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	d.poller.Stop()
	d.pollCancel()
	d.inflight.Wait()
	d.pool.Stop()
	d.cancel()
	slog.Info("dashboard stopped")
}

// track counts a task as in flight so Stop can wait for it. Cycles that
// start after Stop are skipped.
func (d *Dashboard) track(fn poller.Task) poller.Task {
	return func(ctx context.Context, seq uint64) {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		d.inflight.Add(1)
		d.mu.Unlock()
		defer d.inflight.Done()

		fn(ctx, seq)
	}
}

func (d *Dashboard) pollAlerts(ctx context.Context, seq uint64) {
	payload, err := d.api.FetchAlerts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("alerts poll cancelled", "seq", seq)
			return
		}
		slog.Error("error fetching alerts", "seq", seq, "error", err)
		d.notify.Error(msgRefreshFailed)
		return
	}

	d.renderMu.Lock()
	defer d.renderMu.Unlock()

	active, applied := d.store.Ingest(seq, payload.Alerts)
	if !applied {
		slog.Debug("discarding stale alerts", "seq", seq)
		return
	}
	d.sync.ApplyAlerts(seq, payload, active)
	slog.Debug("alerts refreshed", "seq", seq, "active", len(active), "critical", payload.CriticalCount)
}

func (d *Dashboard) pollStats(ctx context.Context, seq uint64) {
	days := int(d.dateRange.Load())
	stats, err := d.api.FetchStats(ctx, days)
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("stats poll cancelled", "seq", seq)
			return
		}
		slog.Error("error fetching stats", "seq", seq, "date_range", days, "error", err)
		d.notify.Error(msgRefreshFailed)
		return
	}

	if !d.sync.ApplyStats(seq, stats) {
		slog.Debug("discarding stale stats", "seq", seq)
		return
	}
	d.writeCharts()
}

func (d *Dashboard) writeCharts() {
	path := d.cfg.Client.ChartsOut
	if path == "" {
		return
	}
	snap, ok := d.view.(snapshotter)
	if !ok {
		return
	}
	if err := render.WriteChartFile(path, snap.Snapshot()); err != nil {
		slog.Error("error writing chart page", "path", path, "error", err)
	}
}

// Dismiss hides the alert immediately and notifies the server in the
// background. A failed notification is reported but the alert stays
// dismissed. It returns false if id was already dismissed.
func (d *Dashboard) Dismiss(id string) bool {
	d.renderMu.Lock()
	changed := d.store.Dismiss(id)
	if changed {
		d.sync.RenderActive(d.store.Active())
	}
	d.renderMu.Unlock()

	if !changed {
		return false
	}

	err := d.pool.Submit(worker.Job{
		Name: "dismiss " + id,
		Run: func(ctx context.Context) error {
			if err := d.api.DismissAlert(ctx, id); err != nil {
				d.notify.Error(msgDismissFailed)
				return fmt.Errorf("error dismissing alert %s: %w", id, err)
			}
			d.notify.Success(msgDismissed)
			return nil
		},
	})
	if err != nil {
		slog.Error("error queueing dismissal", "id", id, "error", err)
		d.notify.Error(msgDismissFailed)
	}
	return true
}

// Export downloads the spreadsheet export into dir in the background and
// reports the saved path through the notifier.
func (d *Dashboard) Export(dir string) error {
	err := d.pool.Submit(worker.Job{
		Name: "export",
		Run: func(ctx context.Context) error {
			path, err := d.api.Export(ctx, dir, d.now())
			if err != nil {
				d.notify.Error(msgExportFailed)
				return err
			}
			d.notify.Success("Exported to " + path)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("error queueing export: %w", err)
	}
	return nil
}

// RefreshNow polls alerts and stats out of band.
func (d *Dashboard) RefreshNow() {
	d.poller.PollNow(TaskAlerts)
	d.poller.PollNow(TaskStats)
}

// SetDateRange changes the stats window and refreshes stats right away.
func (d *Dashboard) SetDateRange(days int) error {
	if days < 1 {
		return fmt.Errorf("invalid date range: %d days", days)
	}
	d.dateRange.Store(int64(days))
	d.poller.PollNow(TaskStats)
	return nil
}

func (d *Dashboard) DateRange() int {
	return int(d.dateRange.Load())
}

func (d *Dashboard) Hidden() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gov.Hidden()
}

func (d *Dashboard) Visible() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gov.Visible()
}

func (d *Dashboard) State() visibility.State {
	return d.gov.State()
}

func (d *Dashboard) Alerts() []models.Alert {
	return d.store.Active()
}

func (d *Dashboard) IsDismissed(id string) bool {
	return d.store.IsDismissed(id)
}

// FindAlert looks up an active alert by patient folio.
func (d *Dashboard) FindAlert(folio models.Folio) (models.Alert, bool) {
	return d.store.Find(folio)
}
