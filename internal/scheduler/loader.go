package scheduler

import (
	"context"
	"strings"

	"github.com/carel2246/prod3-scheduler/internal/schedulererr"
)

// Loader reads everything the Validator needs for one run: resources,
// groups, the working calendar, and eligible jobs with their eligible
// tasks.
type Loader struct {
	repo *Repository
}

// NewLoader builds a Loader over repo.
func NewLoader(repo *Repository) *Loader {
	return &Loader{repo: repo}
}

// Load reads the full scheduling input inside one repeatable-read
// transaction, so the resource/group/calendar/job/task reads all observe the
// same database snapshot instead of five independently-committed views. Any
// store error is wrapped in schedulererr.NewLoadError.
func (l *Loader) Load(ctx context.Context) (ScheduleInput, error) {
	tx, err := l.repo.BeginSnapshot(ctx)
	if err != nil {
		return ScheduleInput{}, schedulererr.NewLoadError(err)
	}
	defer tx.Rollback(ctx)

	resources, err := l.repo.Resources(ctx, tx)
	if err != nil {
		return ScheduleInput{}, schedulererr.NewLoadError(err)
	}

	groups, err := l.repo.ResourceGroups(ctx, tx)
	if err != nil {
		return ScheduleInput{}, schedulererr.NewLoadError(err)
	}

	calendar, err := l.repo.Calendar(ctx, tx)
	if err != nil {
		return ScheduleInput{}, schedulererr.NewLoadError(err)
	}

	allJobs, err := l.repo.EligibleJobs(ctx, tx)
	if err != nil {
		return ScheduleInput{}, schedulererr.NewLoadError(err)
	}

	jobNumbers := make([]string, len(allJobs))
	for i, j := range allJobs {
		jobNumbers[i] = j.JobNumber
	}

	tasks, err := l.repo.EligibleTasks(ctx, tx, jobNumbers)
	if err != nil {
		return ScheduleInput{}, schedulererr.NewLoadError(err)
	}

	for i := range tasks {
		tasks[i].Predecessors = dropNanSentinel(tasks[i].Predecessors)
	}

	if err := tx.Commit(ctx); err != nil {
		return ScheduleInput{}, schedulererr.NewLoadError(err)
	}

	return ScheduleInput{
		Resources: resources,
		Groups:    groups,
		Calendar:  calendar,
		Jobs:      allJobs,
		Tasks:     tasks,
	}, nil
}

// dropNanSentinel removes predecessor entries that mean "no predecessor".
// Source data represents an absent predecessor as the literal string "nan"
// (the stringified form of a missing value upstream), which is not a real
// task number and must never be treated as an unresolved edge.
func dropNanSentinel(predecessors []string) []string {
	var out []string
	for _, p := range predecessors {
		if strings.EqualFold(p, "nan") || p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
