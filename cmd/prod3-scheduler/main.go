package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carel2246/prod3-scheduler/internal/config"
	"github.com/carel2246/prod3-scheduler/internal/obslog"
	"github.com/carel2246/prod3-scheduler/internal/scheduler"
	"github.com/carel2246/prod3-scheduler/internal/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	startDate  string
	budget     time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "prod3-scheduler",
		Short: "Manufacturing job scheduling engine",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to an optional scheduler.yaml overrides file")
	root.AddCommand(runCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load, validate, solve, and persist one schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&startDate, "start-date", "", "anchor date for the schedule, RFC3339 (default: now)")
	cmd.Flags().DurationVar(&budget, "budget", 0, "solver wall-clock budget (default: config default_budget_seconds)")
	return cmd
}

func runSchedule(parent context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := obslog.FormatText
	if cfg.LogFormat == "json" {
		logFormat = obslog.FormatJSON
	}
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := obslog.New(obslog.Config{Format: logFormat, Level: level, Output: os.Stderr})

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("shutdown signal received, cancelling run")
		cancel()
	}()

	s, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	anchor := time.Now().UTC()
	if startDate != "" {
		anchor, err = time.Parse(time.RFC3339, startDate)
		if err != nil {
			return fmt.Errorf("parse --start-date: %w", err)
		}
	}

	runBudget := budget
	if runBudget <= 0 {
		runBudget = cfg.DefaultBudget
	}

	repo := scheduler.NewRepository(s.Pool())
	engine := scheduler.NewEngine(logger, repo, cfg.HorizonMultiplier, cfg.LocalSearchRestarts)

	schedule, outcome, err := engine.Run(ctx, anchor, runBudget)
	if err != nil {
		return err
	}

	logger.Info("run finished", "status", outcome.Status.String(), "makespan_minutes", outcome.Makespan, "entries", len(schedule))
	return nil
}
