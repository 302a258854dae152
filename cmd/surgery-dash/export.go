package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mr1hm/surgery-dashboard/internal/client"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the dashboard spreadsheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := exportDir
		if dir == "" {
			dir = cfg.Client.ExportDir
		}

		c, err := client.New(cfg.Client.BaseURL, cfg.Client.HTTPTimeout)
		if err != nil {
			return err
		}
		path, err := c.Export(cmd.Context(), dir, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", "", "Directory to save into (default: DASHBOARD_EXPORT_DIR)")
}
