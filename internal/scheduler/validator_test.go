package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() ScheduleInput {
	return ScheduleInput{
		Resources: []Resource{
			{ID: 1, Name: "Press-1", Kind: ResourceKindMachine},
			{ID: 2, Name: "Press-2", Kind: ResourceKindMachine},
			{ID: 3, Name: "Alice", Kind: ResourceKindHuman},
		},
		Groups: []ResourceGroup{
			{ID: 10, Name: "AnyPress", MemberIDs: []int64{1, 2}},
		},
		Jobs: []Job{
			{ID: 1, JobNumber: "J1", Quantity: 5},
		},
	}
}

func TestValidate_ResolvesFixedAndGroupRequirements(t *testing.T) {
	input := baseInput()
	input.Tasks = []Task{
		{JobNumber: "J1", TaskNumber: "T1", SetupTime: 10, TimeEach: 2, Resources: []string{"AnyPress", "Alice"}},
	}

	model, err := NewValidator().Validate(input)
	require.NoError(t, err)
	require.Len(t, model.Tasks, 1)

	task := model.Tasks[0]
	assert.Equal(t, 20, task.Duration) // 10 + 2*5
	require.Len(t, task.Requirements, 2)
	assert.Equal(t, RequirementGroup, task.Requirements[0].Kind)
	assert.Equal(t, []int64{1, 2}, task.Requirements[0].MemberIDs)
	assert.Equal(t, RequirementFixed, task.Requirements[1].Kind)
	assert.Equal(t, int64(3), task.Requirements[1].ResourceID)
}

func TestValidate_UnknownResourceRequirementFails(t *testing.T) {
	input := baseInput()
	input.Tasks = []Task{
		{JobNumber: "J1", TaskNumber: "T1", Resources: []string{"NoSuchResource"}},
	}

	_, err := NewValidator().Validate(input)
	require.Error(t, err)
}

func TestValidate_EmptyGroupFails(t *testing.T) {
	input := baseInput()
	input.Groups = []ResourceGroup{{ID: 10, Name: "AnyPress"}} // no members
	input.Tasks = []Task{
		{JobNumber: "J1", TaskNumber: "T1", Resources: []string{"AnyPress"}},
	}

	_, err := NewValidator().Validate(input)
	require.Error(t, err)
}

func TestValidate_UnresolvedPredecessorIsDroppedNotFatal(t *testing.T) {
	input := baseInput()
	input.Tasks = []Task{
		{JobNumber: "J1", TaskNumber: "T1", Predecessors: []string{"T0"}, Resources: []string{"Alice"}},
	}

	model, err := NewValidator().Validate(input)
	require.NoError(t, err)
	assert.Empty(t, model.Tasks[0].Predecessors)
}

func TestValidate_DetectsPrecedenceCycle(t *testing.T) {
	input := baseInput()
	input.Tasks = []Task{
		{JobNumber: "J1", TaskNumber: "T1", Predecessors: []string{"T2"}, Resources: []string{"Alice"}},
		{JobNumber: "J1", TaskNumber: "T2", Predecessors: []string{"T1"}, Resources: []string{"Alice"}},
	}

	_, err := NewValidator().Validate(input)
	require.Error(t, err)
}

func TestComputeDuration_FloorsAndEnforcesMinimumOfOne(t *testing.T) {
	assert.Equal(t, 1, computeDuration(0, 0, 1))
	assert.Equal(t, 1, computeDuration(0.2, 0.1, 1))
	assert.Equal(t, 15, computeDuration(5, 2, 5))
}
