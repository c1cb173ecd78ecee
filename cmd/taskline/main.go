// @title			Taskline API
// @version		1.0
// @description	Task occurrence and shift-coverage engine for multi-location operations teams.
// @BasePath		/api/v1

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/shiftops/taskline/internal/config"
	"github.com/shiftops/taskline/internal/database"
	"github.com/shiftops/taskline/internal/domain"
	"github.com/shiftops/taskline/internal/handler"
	"github.com/shiftops/taskline/internal/logger"
	"github.com/shiftops/taskline/internal/repository"
	"github.com/shiftops/taskline/internal/schedule"
	"github.com/shiftops/taskline/internal/service"
)

func main() {
	app := &cli.App{
		Name:  "taskline",
		Usage: "Task occurrence and shift-coverage engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
				},
				Action: runServe,
			},
			{
				Name:  "report",
				Usage: "Print a coverage report for one company and business day",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "company-id",
						Usage:    "Company UUID to report on",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Business day (YYYY-MM-DD), defaults to the company's current day",
					},
					&cli.StringFlag{
						Name:  "mode",
						Value: string(schedule.ViewModePlanning),
						Usage: "View mode (execution, planning)",
					},
				},
				Action: runReport,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}
	databaseURL := c.String("database-url")

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	h := handler.New(db.Pool())

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runReport(c *cli.Context) error {
	ctx := c.Context
	databaseURL := c.String("database-url")

	mode := schedule.ViewMode(c.String("mode"))
	if !mode.IsValid() {
		return fmt.Errorf("invalid mode %q", c.String("mode"))
	}

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool := db.Pool()
	svc := service.NewOccurrenceService(
		pool,
		repository.NewCompanyRepository(pool),
		repository.NewTaskDefinitionRepository(pool),
		repository.NewShiftRepository(pool),
		repository.NewCompletionRepository(pool),
	)

	params := service.BoardParams{
		CompanyID: c.String("company-id"),
		ViewMode:  mode,
		Options:   schedule.DefaultOptions(),
		Now:       time.Now(),
	}

	var (
		result *schedule.Result
		date   domain.DayKey
	)
	if raw := c.String("date"); raw != "" {
		date, err = domain.ParseDayKey(raw)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", raw, err)
		}
		result, err = svc.BoardForDate(ctx, params, date)
	} else {
		result, date, err = svc.BoardToday(ctx, params)
	}
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	slog.Info("coverage report",
		"company_id", params.CompanyID,
		"date", date,
		"mode", mode,
		"pending", len(result.Groups.Pending),
		"overdue", len(result.Groups.Overdue),
		"completed", len(result.Groups.Completed),
		"no_coverage", len(result.Groups.NoCoverage),
	)
	slog.Info("pipeline counters",
		"definitions", result.Counts.Definitions,
		"expanded", result.Counts.Expanded,
		"coverage_dropped", result.Counts.CoverageDropped,
		"coverage_flagged", result.Counts.CoverageFlagged,
		"errors", result.Counts.Errors,
	)
	for _, diag := range result.Diagnostics {
		slog.Warn("pipeline diagnostic", "detail", diag)
	}
	return nil
}
