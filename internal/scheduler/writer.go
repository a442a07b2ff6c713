package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/carel2246/prod3-scheduler/internal/schedulererr"
)

// Writer translates a solved model back into wall-clock schedule entries
// and persists them.
type Writer struct {
	repo *Repository
}

// NewWriter wraps repo.
func NewWriter(repo *Repository) *Writer {
	return &Writer{repo: repo}
}

// Write converts outcome's elapsed-minute assignments to datetimes anchored
// at startDate and atomically replaces the stored schedule.
func (w *Writer) Write(ctx context.Context, model Model, outcome SolveOutcome, startDate time.Time) (Schedule, error) {
	entries := make(Schedule, 0, len(outcome.Assignments))

	for i, assignment := range outcome.Assignments {
		task := model.Tasks[i]

		start, err := toDatetime(model.Calendar, assignment.Start, startDate)
		if err != nil {
			return nil, err
		}
		end, err := toDatetime(model.Calendar, assignment.End, startDate)
		if err != nil {
			return nil, err
		}

		entries = append(entries, ScheduleEntry{
			TaskNumber:    task.TaskNumber,
			Start:         start,
			End:           end,
			ResourcesUsed: resourcesUsedLabel(model, task, assignment),
		})
	}

	if err := w.repo.ReplaceSchedule(ctx, entries); err != nil {
		return nil, schedulererr.NewPersistError(err)
	}

	return entries, nil
}

// resourcesUsedLabel renders the resources a task used, in requirement
// order, as a comma-joined list of display names.
func resourcesUsedLabel(model Model, task ValidatedTask, assignment TaskAssignment) string {
	names := make([]string, 0, len(task.Requirements))
	for reqIdx, req := range task.Requirements {
		switch req.Kind {
		case RequirementFixed:
			names = append(names, model.ResourceName[req.ResourceID])
		case RequirementGroup:
			names = append(names, model.ResourceName[assignment.SelectedResource[reqIdx]])
		}
	}
	return strings.Join(names, ",")
}
