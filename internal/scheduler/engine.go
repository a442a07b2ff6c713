package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/carel2246/prod3-scheduler/internal/obslog"
	"github.com/carel2246/prod3-scheduler/internal/schedulererr"
	"github.com/google/uuid"
)

// ErrRunInProgress is returned by Engine.Run when a prior run on the same
// Engine value has not yet finished.
var ErrRunInProgress = errors.New("scheduling run already in progress")

// Engine chains the Loader, Validator, Model builder, Solver, and Writer
// into a single scheduling run.
type Engine struct {
	logger            *slog.Logger
	repo              *Repository
	horizonMultiplier int
	restarts          int

	mu      sync.Mutex
	running bool
}

// NewEngine builds an Engine over repo. horizonMultiplier and restarts tune
// the Model builder and Solver respectively; pass the values from
// config.Config.
func NewEngine(logger *slog.Logger, repo *Repository, horizonMultiplier, restarts int) *Engine {
	if logger == nil {
		logger = obslog.New(obslog.DefaultConfig())
	}
	return &Engine{
		logger:            logger,
		repo:              repo,
		horizonMultiplier: horizonMultiplier,
		restarts:          restarts,
	}
}

// Run executes one scheduling pass: load, validate, build, solve, write.
// Only one run may be in flight on a given Engine at a time; a concurrent
// call returns ErrRunInProgress.
func (e *Engine) Run(ctx context.Context, startDate time.Time, budget time.Duration) (Schedule, SolveOutcome, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, SolveOutcome{}, ErrRunInProgress
	}
	e.running = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	runID := uuid.NewString()
	log := obslog.WithRun(e.logger, runID)

	log.Info("scheduling run starting", "phase", "load", "start_date", startDate.Format(time.RFC3339), "budget", budget.String())

	loader := NewLoader(e.repo)
	input, err := loader.Load(ctx)
	if err != nil {
		log.Error("load failed", "phase", "load", "error", err)
		return nil, SolveOutcome{}, err
	}
	log.Info("loaded input", "phase", "load", "jobs", len(input.Jobs), "tasks", len(input.Tasks))

	log.Info("validation starting", "phase", "validate-start", "tasks", len(input.Tasks))
	validator := NewValidator()
	validated, err := validator.Validate(input)
	if err != nil {
		log.Error("validation failed", "phase", "validate", "error", err)
		return nil, SolveOutcome{}, err
	}
	log.Info("validated model", "phase", "validate", "tasks", len(validated.Tasks))

	model := Build(validated, e.horizonMultiplier, log)
	log.Info("built model", "phase", "build",
		"horizon", model.Horizon, "lower_bound", model.LowerBound(),
		"precedence_edges", model.PrecedenceEdgeCount(), "intervals", model.IntervalCount())

	log.Info("solve starting", "phase", "solve-start", "budget", budget.String(), "restarts", e.restarts)
	solver := NewSolver(e.restarts)
	outcome := solver.Solve(ctx, model, budget, log)
	log.Info("solve complete", "phase", "solve", "status", outcome.Status.String(), "makespan", outcome.Makespan)

	if outcome.Status == StatusInfeasible {
		err := schedulererr.NewInfeasibleError()
		log.Error("no feasible schedule", "phase", "solve", "error", err)
		return nil, outcome, err
	}
	if outcome.Status == StatusUnknown {
		err := schedulererr.NewTimedOutError()
		log.Error("solve did not complete in budget", "phase", "solve", "error", err)
		return nil, outcome, err
	}

	log.Info("write starting", "phase", "write-start", "entries", len(outcome.Assignments))
	writer := NewWriter(e.repo)
	schedule, err := writer.Write(ctx, model, outcome, startDate)
	if err != nil {
		log.Error("write failed", "phase", "write", "error", err)
		return nil, outcome, err
	}
	log.Info("scheduling run complete", "phase", "write", "entries", len(schedule))

	return schedule, outcome, nil
}
