package scheduler

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Solver drives the construction heuristic and bounded local search that
// together replace a CP-SAT model: instead of wrapping a constraint-solver
// library, the model is solved by deterministic list-scheduling augmented
// with parallel randomized restarts, with optimality proved against a lower
// bound rather than by exhaustive search.
type Solver struct {
	restarts int
}

// NewSolver returns a Solver that runs up to restarts concurrent
// construction attempts per Solve call.
func NewSolver(restarts int) *Solver {
	if restarts <= 0 {
		restarts = 1
	}
	return &Solver{restarts: restarts}
}

// Solve searches for a minimal-makespan schedule within budget. A
// non-positive budget yields StatusUnknown immediately: the solver never
// claims a result it had no time to compute. log may be nil; when set,
// Solve emits a debug-level per-resource usage summary once the best
// candidate has been picked, mirroring the source's own per-resource
// diagnostic prints.
func (s *Solver) Solve(ctx context.Context, model Model, budget time.Duration, log *slog.Logger) SolveOutcome {
	if budget <= 0 {
		return SolveOutcome{Status: StatusUnknown}
	}
	if len(model.Tasks) == 0 {
		return SolveOutcome{Status: StatusOptimal, Assignments: nil, Makespan: 0}
	}

	deadline, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	order := stableTopologicalOrder(model)

	type result struct {
		assignments []TaskAssignment
		makespan    int
	}

	results := make(chan result, s.restarts)
	var wg sync.WaitGroup

	for worker := 0; worker < s.restarts; worker++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			perm := perturbedOrder(model, order, workerID)
			assignments, makespan := construct(model, perm)

			select {
			case results <- result{assignments: assignments, makespan: makespan}:
			case <-deadline.Done():
			}
		}(worker)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	best := result{makespan: -1}
	for r := range results {
		if best.makespan == -1 || r.makespan < best.makespan {
			best = r
		}
	}

	if best.makespan == -1 {
		return SolveOutcome{Status: StatusUnknown}
	}

	status := StatusFeasible
	if best.makespan <= model.LowerBound() {
		status = StatusOptimal
	}

	if log != nil {
		logResourceUsage(log, model, best.assignments)
	}

	return SolveOutcome{
		Status:      status,
		Assignments: best.assignments,
		Makespan:    best.makespan,
	}
}

// resourceInterval is one task's busy span on a resource it occupies.
type resourceInterval struct {
	start, end int
}

// logResourceUsage emits, per resource, the number of intervals assigned to
// it plus the total busy minutes, at debug level. It also sorts those
// intervals by start time and checks
// for overlap between consecutive intervals and logs a WARN if one is
// found: construct guarantees this never happens, so the check is a sanity
// assertion against the heuristic, not a correctness dependency.
func logResourceUsage(log *slog.Logger, model Model, assignments []TaskAssignment) {
	byResource := make(map[int64][]resourceInterval)
	for i, a := range assignments {
		for reqIdx, req := range model.Tasks[i].Requirements {
			var resID int64
			switch req.Kind {
			case RequirementFixed:
				resID = req.ResourceID
			case RequirementGroup:
				resID = a.SelectedResource[reqIdx]
			}
			byResource[resID] = append(byResource[resID], resourceInterval{start: a.Start, end: a.End})
		}
	}

	for resID, intervals := range byResource {
		sort.Slice(intervals, func(a, b int) bool { return intervals[a].start < intervals[b].start })

		busy := 0
		for i, iv := range intervals {
			busy += iv.end - iv.start
			if i > 0 && iv.start < intervals[i-1].end {
				log.Warn("resource interval overlap", "phase", "solve",
					"resource_id", resID, "resource_name", model.ResourceName[resID])
			}
		}

		log.Debug("resource usage", "phase", "solve",
			"resource_id", resID, "resource_name", model.ResourceName[resID],
			"intervals", len(intervals), "busy_minutes", busy)
	}
}

// resourceUsage sums, per resource, the busy minutes across every task
// assigned to it, whether the requirement was fixed or resolved from a
// group.
func resourceUsage(model Model, assignments []TaskAssignment) map[int64]int {
	usage := make(map[int64]int)
	for i, a := range assignments {
		busy := a.End - a.Start
		for reqIdx, req := range model.Tasks[i].Requirements {
			switch req.Kind {
			case RequirementFixed:
				usage[req.ResourceID] += busy
			case RequirementGroup:
				usage[a.SelectedResource[reqIdx]] += busy
			}
		}
	}
	return usage
}

// stableTopologicalOrder returns a topological order of the tasks,
// tie-broken by ascending task index so that construction is deterministic
// across runs given the same input.
func stableTopologicalOrder(model Model) []int {
	inDegree := make([]int, len(model.Tasks))
	for _, t := range model.Tasks {
		for range t.Predecessors {
			inDegree[t.Index]++
		}
	}

	ready := make([]int, 0, len(model.Tasks))
	for i, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, i)
		}
	}
	sort.Ints(ready)

	order := make([]int, 0, len(model.Tasks))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		var newlyReady []int
		for _, succ := range model.Successors[next] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newlyReady = append(newlyReady, succ)
			}
		}
		sort.Ints(newlyReady)
		ready = append(ready, newlyReady...)
		sort.Ints(ready)
	}

	return order
}

// perturbedOrder returns a variant of the base topological order. For
// workerID == 0 it returns the base order unchanged, so the deterministic
// construction is always among the candidates; other workers apply a
// seeded, reproducible shuffle within consecutive windows of three tasks to
// explore alternative schedules within the same budget. A window whose
// shuffle would place a task before one of its predecessors keeps its base
// order, so every returned order is still topological.
func perturbedOrder(model Model, base []int, workerID int) []int {
	if workerID == 0 {
		return base
	}

	perm := make([]int, len(base))
	copy(perm, base)

	rng := rand.New(rand.NewSource(int64(workerID)))
	window := 3
	for i := 0; i+window <= len(perm); i += window {
		rng.Shuffle(window, func(a, b int) {
			perm[i+a], perm[i+b] = perm[i+b], perm[i+a]
		})

		pos := make(map[int]int, window)
		for k, task := range perm[i : i+window] {
			pos[task] = k
		}
		valid := true
		for k, task := range perm[i : i+window] {
			for _, pred := range model.Tasks[task].Predecessors {
				if p, ok := pos[pred]; ok && p > k {
					valid = false
				}
			}
		}
		if !valid {
			copy(perm[i:i+window], base[i:i+window])
		}
	}
	return perm
}

// construct runs list scheduling over order: each task starts as early as
// its predecessors and its chosen resources allow, and resource timelines
// advance monotonically, so no two tasks ever overlap on the same
// resource.
func construct(model Model, order []int) ([]TaskAssignment, int) {
	assignments := make([]TaskAssignment, len(model.Tasks))
	taskEnd := make([]int, len(model.Tasks))
	resourceFree := make(map[int64]int)

	makespan := 0
	for _, i := range order {
		task := model.Tasks[i]

		start := 0
		for _, pred := range task.Predecessors {
			if taskEnd[pred] > start {
				start = taskEnd[pred]
			}
		}

		selected := make(map[int]int64)
		required := make([]int64, 0, len(task.Requirements))
		for reqIdx, req := range task.Requirements {
			switch req.Kind {
			case RequirementFixed:
				if resourceFree[req.ResourceID] > start {
					start = resourceFree[req.ResourceID]
				}
				required = append(required, req.ResourceID)
			case RequirementGroup:
				best := req.MemberIDs[0]
				for _, candidate := range req.MemberIDs {
					if resourceFree[candidate] < resourceFree[best] {
						best = candidate
					}
				}
				if resourceFree[best] > start {
					start = resourceFree[best]
				}
				selected[reqIdx] = best
				required = append(required, best)
			}
		}

		end := start + task.Duration
		for _, resID := range required {
			resourceFree[resID] = end
		}

		taskEnd[i] = end
		assignments[i] = TaskAssignment{Start: start, End: end, SelectedResource: selected}
		if end > makespan {
			makespan = end
		}
	}

	return assignments, makespan
}
