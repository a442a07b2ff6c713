package scheduler

import (
	"math"

	"github.com/carel2246/prod3-scheduler/internal/schedulererr"
)

// taskKey identifies a task uniquely by job and task number, the same
// composite key the source data uses.
type taskKey struct {
	jobNumber  string
	taskNumber string
}

// Validator turns raw ScheduleInput into a ValidatedModel: it assigns dense
// indices, computes durations, resolves resource requirements, and rejects
// input with precedence cycles or malformed requirements.
type Validator struct{}

// NewValidator returns a ready Validator. It holds no state.
func NewValidator() *Validator { return &Validator{} }

// Validate resolves input into a ValidatedModel, or returns the first
// schedulererr.SchedulerError it encounters.
func (v *Validator) Validate(input ScheduleInput) (ValidatedModel, error) {
	resourceByName := make(map[string]Resource, len(input.Resources))
	resourceName := make(map[int64]string, len(input.Resources))
	for _, r := range input.Resources {
		resourceByName[r.Name] = r
		resourceName[r.ID] = r.Name
	}

	groupByName := make(map[string]ResourceGroup, len(input.Groups))
	for _, g := range input.Groups {
		groupByName[g.Name] = g
	}

	quantityByJob := make(map[string]int, len(input.Jobs))
	for _, j := range input.Jobs {
		quantityByJob[j.JobNumber] = j.Quantity
	}

	index := make(map[taskKey]int, len(input.Tasks))
	for i, t := range input.Tasks {
		index[taskKey{t.JobNumber, t.TaskNumber}] = i
	}

	tasks := make([]ValidatedTask, len(input.Tasks))
	for i, t := range input.Tasks {
		requirements, err := resolveRequirements(t, resourceByName, groupByName)
		if err != nil {
			return ValidatedModel{}, err
		}

		var predecessors []int
		for _, predNumber := range t.Predecessors {
			predIdx, ok := index[taskKey{t.JobNumber, predNumber}]
			if !ok {
				// Unresolved predecessor reference within the eligible set:
				// the edge is dropped; no log record is emitted for it.
				continue
			}
			predecessors = append(predecessors, predIdx)
		}

		tasks[i] = ValidatedTask{
			Index:        i,
			JobNumber:    t.JobNumber,
			TaskNumber:   t.TaskNumber,
			Duration:     computeDuration(t.SetupTime, t.TimeEach, quantityByJob[t.JobNumber]),
			Requirements: requirements,
			Predecessors: predecessors,
		}
	}

	if err := detectCycles(tasks); err != nil {
		return ValidatedModel{}, err
	}

	var calendar [8]CalendarEntry
	for _, c := range input.Calendar {
		if c.Weekday >= 1 && c.Weekday <= 7 {
			calendar[c.Weekday] = c
		}
	}

	return ValidatedModel{
		Tasks:        tasks,
		ResourceName: resourceName,
		Calendar:     calendar,
	}, nil
}

// computeDuration mirrors the source's duration formula: setup time plus
// per-unit time scaled by quantity, floored to an integer and never less
// than one minute.
func computeDuration(setupTime, timeEach float64, quantity int) int {
	qty := float64(quantity)
	if qty <= 0 {
		qty = 1
	}
	duration := setupTime + timeEach*qty
	return int(math.Max(1, math.Floor(duration)))
}

func resolveRequirements(t Task, resourceByName map[string]Resource, groupByName map[string]ResourceGroup) ([]Requirement, error) {
	requirements := make([]Requirement, 0, len(t.Resources))
	for _, name := range t.Resources {
		if res, ok := resourceByName[name]; ok {
			requirements = append(requirements, Requirement{
				Kind:       RequirementFixed,
				Name:       name,
				ResourceID: res.ID,
			})
			continue
		}

		if group, ok := groupByName[name]; ok {
			if len(group.MemberIDs) == 0 {
				return nil, schedulererr.NewEmptyGroupError(name)
			}
			requirements = append(requirements, Requirement{
				Kind:      RequirementGroup,
				Name:      name,
				MemberIDs: group.MemberIDs,
			})
			continue
		}

		return nil, schedulererr.NewUnknownResourceError(name, t.JobNumber, t.TaskNumber)
	}
	return requirements, nil
}

// detectCycles runs a DFS over the precedence graph (same job only, since
// predecessors are resolved within a job) and reports the first cycle it
// finds.
func detectCycles(tasks []ValidatedTask) error {
	const (
		unvisited = 0
		onStack   = 1
		done      = 2
	)
	state := make([]int, len(tasks))

	var visit func(i int) error
	visit = func(i int) error {
		state[i] = onStack
		for _, predIdx := range tasks[i].Predecessors {
			switch state[predIdx] {
			case onStack:
				return schedulererr.NewCycleError(tasks[i].JobNumber, tasks[i].TaskNumber, tasks[predIdx].TaskNumber)
			case unvisited:
				if err := visit(predIdx); err != nil {
					return err
				}
			}
		}
		state[i] = done
		return nil
	}

	for i := range tasks {
		if state[i] == unvisited {
			if err := visit(i); err != nil {
				return err
			}
		}
	}
	return nil
}
