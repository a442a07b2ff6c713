package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildModel(t *testing.T, tasks []ValidatedTask) Model {
	t.Helper()
	vm := ValidatedModel{
		Tasks:        tasks,
		ResourceName: map[int64]string{1: "Press-1", 2: "Press-2"},
	}
	return Build(vm, 2, nil)
}

func TestSolve_RespectsPrecedenceAndNoOverlap(t *testing.T) {
	tasks := []ValidatedTask{
		{Index: 0, JobNumber: "J1", TaskNumber: "T1", Duration: 30, Requirements: []Requirement{{Kind: RequirementFixed, ResourceID: 1}}},
		{Index: 1, JobNumber: "J1", TaskNumber: "T2", Duration: 20, Requirements: []Requirement{{Kind: RequirementFixed, ResourceID: 1}}, Predecessors: []int{0}},
		{Index: 2, JobNumber: "J1", TaskNumber: "T3", Duration: 10, Requirements: []Requirement{{Kind: RequirementFixed, ResourceID: 2}}},
	}
	model := buildModel(t, tasks)

	outcome := NewSolver(4).Solve(context.Background(), model, time.Second, nil)
	require.NotEqual(t, StatusUnknown, outcome.Status)
	require.Len(t, outcome.Assignments, 3)

	t1, t2, t3 := outcome.Assignments[0], outcome.Assignments[1], outcome.Assignments[2]
	assert.GreaterOrEqual(t, t2.Start, t1.End, "T2 must start no earlier than T1 ends")
	assert.True(t, t1.End <= t2.Start || t2.End <= t1.Start, "T1 and T2 share a resource and must not overlap")
	_ = t3 // independent task on a different resource, no ordering constraint
}

func TestSolve_ZeroBudgetYieldsUnknown(t *testing.T) {
	model := buildModel(t, []ValidatedTask{{Index: 0, Duration: 10}})
	outcome := NewSolver(2).Solve(context.Background(), model, 0, nil)
	assert.Equal(t, StatusUnknown, outcome.Status)
}

func TestSolve_EmptyModelIsTriviallyOptimal(t *testing.T) {
	model := buildModel(t, nil)
	outcome := NewSolver(2).Solve(context.Background(), model, time.Second, nil)
	assert.Equal(t, StatusOptimal, outcome.Status)
	assert.Equal(t, 0, outcome.Makespan)
}

func TestSolve_SingleChainMeetsLowerBound(t *testing.T) {
	// A single linear chain has no resource contention to create slack, so
	// the construction heuristic must find the optimal, critical-path makespan.
	tasks := []ValidatedTask{
		{Index: 0, Duration: 10, Requirements: []Requirement{{Kind: RequirementFixed, ResourceID: 1}}},
		{Index: 1, Duration: 15, Requirements: []Requirement{{Kind: RequirementFixed, ResourceID: 2}}, Predecessors: []int{0}},
	}
	model := buildModel(t, tasks)

	outcome := NewSolver(4).Solve(context.Background(), model, time.Second, nil)
	assert.Equal(t, StatusOptimal, outcome.Status)
	assert.Equal(t, 25, outcome.Makespan)
}

func TestResourceUsage_SumsBusyMinutesPerSelectedResource(t *testing.T) {
	tasks := []ValidatedTask{
		{Index: 0, Duration: 10, Requirements: []Requirement{{Kind: RequirementFixed, ResourceID: 1}}},
		{Index: 1, Duration: 5, Requirements: []Requirement{{Kind: RequirementGroup, MemberIDs: []int64{2, 3}}}},
	}
	model := buildModel(t, tasks)
	assignments := []TaskAssignment{
		{Start: 0, End: 10},
		{Start: 0, End: 5, SelectedResource: map[int]int64{0: 3}},
	}
	usage := resourceUsage(model, assignments)
	assert.Equal(t, 10, usage[1])
	assert.Equal(t, 5, usage[3])
	assert.Equal(t, 0, usage[2])
}

func TestStableTopologicalOrder_TieBreaksByIndex(t *testing.T) {
	model := buildModel(t, []ValidatedTask{
		{Index: 0, Duration: 1},
		{Index: 1, Duration: 1},
		{Index: 2, Duration: 1, Predecessors: []int{0, 1}},
	})
	order := stableTopologicalOrder(model)
	assert.Equal(t, []int{0, 1, 2}, order)
}
