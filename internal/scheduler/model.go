package scheduler

import "log/slog"

// Model is the disjunctive scheduling model the Solver driver consumes: a
// validated task set plus the derived structures (horizon, successor
// index) that the construction heuristic and local search need repeatedly
// and would otherwise recompute on every pass.
type Model struct {
	Tasks        []ValidatedTask
	ResourceName map[int64]string
	Calendar     [8]CalendarEntry

	// Horizon bounds every start/end time the solver will consider.
	Horizon int

	// Successors[i] lists tasks whose Predecessors include i, the reverse
	// of ValidatedTask.Predecessors.
	Successors [][]int
}

// Build derives a Model from a ValidatedModel. horizonMultiplier scales the
// sum of task durations into the search horizon (spec Open Question 3);
// the source anchored this at 2. log may be nil; when set, Build emits a
// debug-level record of every task's computed duration, mirroring the
// diagnostic prints the source emitted while assembling its CP-SAT model.
func Build(vm ValidatedModel, horizonMultiplier int, log *slog.Logger) Model {
	if horizonMultiplier <= 0 {
		horizonMultiplier = 2
	}

	total := 0
	for _, t := range vm.Tasks {
		total += t.Duration
		if log != nil {
			log.Debug("task duration", "phase", "build",
				"job_number", t.JobNumber, "task_number", t.TaskNumber, "duration", t.Duration)
		}
	}

	successors := make([][]int, len(vm.Tasks))
	for i, t := range vm.Tasks {
		for _, pred := range t.Predecessors {
			successors[pred] = append(successors[pred], i)
		}
	}

	return Model{
		Tasks:        vm.Tasks,
		ResourceName: vm.ResourceName,
		Calendar:     vm.Calendar,
		Horizon:      total * horizonMultiplier,
		Successors:   successors,
	}
}

// PrecedenceEdgeCount is the total number of predecessor edges across all
// tasks, reported in the build-phase log record so a run's log reflects the size of the
// precedence graph the solver must respect.
func (m Model) PrecedenceEdgeCount() int {
	total := 0
	for _, t := range m.Tasks {
		total += len(t.Predecessors)
	}
	return total
}

// IntervalCount is the number of resource intervals the model implies: one
// per fixed requirement and one per candidate member of a group
// requirement, matching the interval variables the source's CP-SAT model
// created per task/resource pairing.
func (m Model) IntervalCount() int {
	total := 0
	for _, t := range m.Tasks {
		for _, req := range t.Requirements {
			switch req.Kind {
			case RequirementFixed:
				total++
			case RequirementGroup:
				total += len(req.MemberIDs)
			}
		}
	}
	return total
}

// ResourceLowerBound is the largest total duration any single fixed
// resource must absorb, a lower bound on the makespan alongside the
// critical path length.
func (m Model) ResourceLowerBound() int {
	totals := make(map[int64]int)
	for _, t := range m.Tasks {
		for _, req := range t.Requirements {
			if req.Kind == RequirementFixed {
				totals[req.ResourceID] += t.Duration
			}
		}
	}
	max := 0
	for _, total := range totals {
		if total > max {
			max = total
		}
	}
	return max
}

// CriticalPathLength is the longest duration-weighted path through the
// precedence graph, computed by dynamic programming over the topological
// order implied by Predecessors (the graph is acyclic, guaranteed by the
// Validator).
func (m Model) CriticalPathLength() int {
	finish := make([]int, len(m.Tasks))
	max := 0
	for i := range m.Tasks {
		max = maxInt(max, m.earliestFinish(i, finish))
	}
	return max
}

func (m Model) earliestFinish(i int, memo []int) int {
	if memo[i] != 0 {
		return memo[i]
	}
	start := 0
	for _, pred := range m.Tasks[i].Predecessors {
		start = maxInt(start, m.earliestFinish(pred, memo))
	}
	finish := start + m.Tasks[i].Duration
	memo[i] = finish
	return finish
}

// LowerBound is the makespan lower bound used to prove optimality: the
// larger of the critical path length and the busiest single resource's
// total duration.
func (m Model) LowerBound() int {
	return maxInt(m.CriticalPathLength(), m.ResourceLowerBound())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
