package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/surgery-dashboard/internal/client"
	"github.com/mr1hm/surgery-dashboard/internal/config"
	"github.com/mr1hm/surgery-dashboard/internal/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "surgery-dash",
	Short: "Terminal client for the surgery dashboard",
	Long: `surgery-dash follows the surgery dashboard from a terminal.

It polls alerts and statistics, lets you dismiss alerts, exports the
dashboard spreadsheet and auto-saves form drafts.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		logging.Setup(cfg.Logging.Level)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(autosaveCmd)
	rootCmd.AddCommand(bmiCmd)
	rootCmd.AddCommand(passwordCmd)
	rootCmd.AddCommand(registerCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient builds a dashboard client and picks up a CSRF token, either
// from configuration or from the server-rendered dashboard page.
func newClient(ctx context.Context, page string) (*client.Client, error) {
	c, err := client.New(cfg.Client.BaseURL, cfg.Client.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	if cfg.Client.CSRFToken != "" {
		c.SetCSRFToken(cfg.Client.CSRFToken)
		return c, nil
	}
	if err := c.LoadCSRFToken(ctx, page); err != nil {
		return nil, fmt.Errorf("error loading csrf token: %w", err)
	}
	return c, nil
}
