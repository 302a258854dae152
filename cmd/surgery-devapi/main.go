package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/surgery-dashboard/internal/config"
	"github.com/mr1hm/surgery-dashboard/internal/devapi"
	"github.com/mr1hm/surgery-dashboard/internal/logging"
	"github.com/mr1hm/surgery-dashboard/internal/repository"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "surgery-devapi",
	Short:        "Development stand-in for the surgery dashboard API",
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

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API on SERVER_HOST:SERVER_PORT",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	seedCount     int
	seedPhysician string
	seedValue     uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample assessments into DB_PATH",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repository.Seed(cmd.Context(), db, seedCount, seedPhysician, seedValue, time.Now()); err != nil {
			return err
		}
		slog.Info("seeded sample assessments", "count", seedCount, "physician", seedPhysician, "db", cfg.DB.Path)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 50, "Number of assessments")
	seedCmd.Flags().StringVar(&seedPhysician, "physician", "Dr. Sample", "Physician recorded on the assessments")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 1, "Random seed")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDB() (*repository.SQLiteDB, error) {
	if dir := filepath.Dir(cfg.DB.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}
	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	gin.SetMode(gin.ReleaseMode)
	router := devapi.NewRouter(devapi.NewHandler(db), cfg.RateLimit.RPS)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
