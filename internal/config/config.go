// Package config loads the scheduling engine's runtime configuration from
// environment variables, with an optional YAML file supplying defaults for
// solver-tuning knobs that are awkward to express as env vars.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the engine's runtime configuration.
type Config struct {
	DatabaseURL string

	LogFormat string // "text" or "json"
	LogLevel  string // "debug", "info", "warn", "error"

	// DefaultBudget is the wall-clock budget used when a caller does not
	// supply one explicitly.
	DefaultBudget time.Duration

	// HorizonMultiplier scales the sum of task durations into the CP
	// horizon (spec Open Question 3). The source anchored this at 2.
	HorizonMultiplier int

	// LocalSearchRestarts bounds how many randomized restart workers the
	// solver's local-search phase spawns.
	LocalSearchRestarts int
}

// fileOverrides is the shape of the optional scheduler.yaml file. Only
// solver-tuning knobs live here; connection details stay in the environment.
type fileOverrides struct {
	DefaultBudgetSeconds int `yaml:"default_budget_seconds"`
	HorizonMultiplier    int `yaml:"horizon_multiplier"`
	LocalSearchRestarts  int `yaml:"local_search_restarts"`
}

// Load reads configuration from environment variables, using configPath (if
// it exists) as the source of defaults for fields the environment does not
// override. Pass an empty configPath to skip the file entirely.
func Load(configPath string) (Config, error) {
	overrides, err := loadFileOverrides(configPath)
	if err != nil {
		return Config{}, err
	}

	defaultBudgetSeconds := overrides.DefaultBudgetSeconds
	if defaultBudgetSeconds <= 0 {
		defaultBudgetSeconds = 60
	}
	horizonMultiplier := overrides.HorizonMultiplier
	if horizonMultiplier <= 0 {
		horizonMultiplier = 2
	}
	localSearchRestarts := overrides.LocalSearchRestarts
	if localSearchRestarts <= 0 {
		localSearchRestarts = 4
	}

	databaseURL := envString("SCHEDULER_DATABASE_URL", "")
	logFormat := envString("SCHEDULER_LOG_FORMAT", "text")
	logLevel := envString("SCHEDULER_LOG_LEVEL", "info")
	defaultBudgetSeconds = envInt("SCHEDULER_DEFAULT_BUDGET_SECONDS", defaultBudgetSeconds)
	horizonMultiplier = envInt("SCHEDULER_HORIZON_MULTIPLIER", horizonMultiplier)
	localSearchRestarts = envInt("SCHEDULER_LOCAL_SEARCH_RESTARTS", localSearchRestarts)

	if databaseURL == "" {
		return Config{}, fmt.Errorf("SCHEDULER_DATABASE_URL is required")
	}

	return Config{
		DatabaseURL:         databaseURL,
		LogFormat:           logFormat,
		LogLevel:            logLevel,
		DefaultBudget:       time.Duration(defaultBudgetSeconds) * time.Second,
		HorizonMultiplier:   horizonMultiplier,
		LocalSearchRestarts: localSearchRestarts,
	}, nil
}

func loadFileOverrides(configPath string) (fileOverrides, error) {
	if configPath == "" {
		return fileOverrides{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fileOverrides{}, nil
		}
		return fileOverrides{}, fmt.Errorf("read config file: %w", err)
	}

	var overrides fileOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fileOverrides{}, fmt.Errorf("parse config file: %w", err)
	}
	return overrides, nil
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
