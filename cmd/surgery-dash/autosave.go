package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mr1hm/surgery-dashboard/internal/autosave"
	"github.com/mr1hm/surgery-dashboard/internal/scheduler"
)

var autosaveCmd = &cobra.Command{
	Use:   "autosave <draft.yaml>",
	Short: "Submit a form draft whenever it changes",
	Long: `Watch a YAML form draft and submit it to the server as an auto-save.

The draft is sent AUTOSAVE_DEBOUNCE after the last edit, every
AUTOSAVE_INTERVAL while it has gone unsaved, and once more on exit.

Draft format:
  action: /patients/1001/edit/
  fields:
    peso: 70
    talla: 175`,
	Args: cobra.ExactArgs(1),
	RunE: runAutosave,
}

type printNotifier struct {
	w io.Writer
}

func (n printNotifier) Success(msg string) {
	fmt.Fprintln(n.w, msg)
}

func runAutosave(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := autosave.LoadDraft(path); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := newClient(ctx, cfg.Client.DashboardPath)
	if err != nil {
		return err
	}

	submit := func(ctx context.Context) error {
		d, err := autosave.LoadDraft(path)
		if err != nil {
			return err
		}
		return c.SubmitForm(ctx, d.Action, d.Values())
	}

	// Saves outlive the signal so the final flush can still reach the server.
	saveCtx, cancelSaves := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelSaves()

	sched := scheduler.NewTicker()
	saver := autosave.New(sched, submit, printNotifier{w: cmd.OutOrStdout()},
		cfg.AutoSave.Debounce, cfg.AutoSave.Interval)
	saver.Start(saveCtx)

	slog.Info("watching draft", "path", path, "debounce", cfg.AutoSave.Debounce, "interval", cfg.AutoSave.Interval)
	watchErr := autosave.Watch(ctx, path, saver.Changed)

	saver.Stop()
	sched.Wait()
	saver.Flush()

	slog.Info("auto-save stopped", "saves", saver.Saves())
	return watchErr
}
