package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mr1hm/surgery-dashboard/internal/dashboard"
	"github.com/mr1hm/surgery-dashboard/internal/logging"
	"github.com/mr1hm/surgery-dashboard/internal/notify"
	"github.com/mr1hm/surgery-dashboard/internal/render"
	"github.com/mr1hm/surgery-dashboard/internal/scheduler"
	"github.com/mr1hm/surgery-dashboard/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the live dashboard",
	Long: `Show the live dashboard in the terminal.

Alerts refresh every ALERTS_POLL_INTERVAL and statistics every
STATS_POLL_INTERVAL. Polling pauses while the terminal loses focus and
alerts are refreshed once when it comes back.

Keys:
  j/k   move between alerts
  d     dismiss the selected alert
  r     refresh now
  e     export the spreadsheet to DASHBOARD_EXPORT_DIR
  f     cycle the statistics window (7, 30, 90 days)
  q     quit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	logFile, err := logging.SetupFile(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := newClient(ctx, cfg.Client.DashboardPath)
	if err != nil {
		return err
	}

	view := render.NewMemoryView()
	notes := notify.NewBroadcaster()
	sched := scheduler.NewTicker()
	dash := dashboard.New(cfg, c, view, sched, notes)

	subID, ch := notes.Subscribe()
	p := tea.NewProgram(
		tui.New(dash, cfg.Client.ExportDir),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	tui.Bind(ctx, p, view, ch)

	dash.Start(ctx)
	_, runErr := p.Run()

	dash.Stop()
	sched.Wait()
	notes.Unsubscribe(subID)

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		slog.Error("terminal ui error", "error", runErr)
		return fmt.Errorf("error running dashboard: %w", runErr)
	}
	return nil
}
