package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/ports"
)

func TestTaskService_UpsertCreateAndEdit(t *testing.T) {
	ctx := context.Background()
	h := newHarness("2025-06-02T09:00:00Z")
	date := entities.NewDate(2025, time.June, 2)

	task, err := h.tasks.Upsert(ctx, "u1", date, ports.UpsertTaskRequest{
		Description: "Review deployment runbook",
		Status:      entities.TaskStatusPending,
		Hours:       2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, task.AddedOn, task.UpdatedOn)

	h.clock.Advance(time.Hour)
	edited, err := h.tasks.Upsert(ctx, "u1", date, ports.UpsertTaskRequest{
		ID:          task.ID,
		Description: "Review deployment runbook",
		Status:      entities.TaskStatusCompleted,
		Hours:       3,
	})
	require.NoError(t, err)
	assert.Equal(t, task.ID, edited.ID)
	assert.Equal(t, entities.TaskStatusCompleted, edited.Status)
	assert.Equal(t, 3, edited.Hours)
	assert.Equal(t, task.AddedOn, edited.AddedOn)
	assert.True(t, edited.UpdatedOn.After(edited.AddedOn))
}

func TestTaskService_UpsertUnknownIDRejected(t *testing.T) {
	h := newHarness("2025-06-02T09:00:00Z")

	_, err := h.tasks.Upsert(context.Background(), "u1", entities.NewDate(2025, time.June, 2),
		ports.UpsertTaskRequest{
			ID:          "no-such-task",
			Description: "x",
			Status:      entities.TaskStatusPending,
		})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestTaskService_UpsertValidation(t *testing.T) {
	h := newHarness("2025-06-02T09:00:00Z")
	ctx := context.Background()
	date := entities.NewDate(2025, time.June, 2)

	tests := []struct {
		name string
		req  ports.UpsertTaskRequest
	}{
		{"empty description", ports.UpsertTaskRequest{Status: entities.TaskStatusPending, Hours: 1}},
		{"unknown status", ports.UpsertTaskRequest{Description: "x", Status: "Paused", Hours: 1}},
		{"hours above cap", ports.UpsertTaskRequest{Description: "x", Status: entities.TaskStatusPending, Hours: 9}},
		{"negative hours", ports.UpsertTaskRequest{Description: "x", Status: entities.TaskStatusPending, Hours: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.tasks.Upsert(ctx, "u1", date, tt.req)
			assert.ErrorIs(t, err, entities.ErrValidation)
		})
	}
}

func TestTaskService_ListPreservesAddOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness("2025-06-02T09:00:00Z")
	date := entities.NewDate(2025, time.June, 2)

	for _, desc := range []string{"first", "second", "third"} {
		_, err := h.tasks.Upsert(ctx, "u1", date, ports.UpsertTaskRequest{
			Description: desc, Status: entities.TaskStatusPending, Hours: 1,
		})
		require.NoError(t, err)
		h.clock.Advance(time.Minute)
	}

	tasks, err := h.tasks.List(ctx, "u1", date)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "first", tasks[0].Description)
	assert.Equal(t, "second", tasks[1].Description)
	assert.Equal(t, "third", tasks[2].Description)
}

func TestTaskService_Remove(t *testing.T) {
	ctx := context.Background()
	h := newHarness("2025-06-02T09:00:00Z")
	date := entities.NewDate(2025, time.June, 2)

	task, err := h.tasks.Upsert(ctx, "u1", date, ports.UpsertTaskRequest{
		Description: "x", Status: entities.TaskStatusPending, Hours: 1,
	})
	require.NoError(t, err)

	require.NoError(t, h.tasks.Remove(ctx, "u1", date, task.ID))
	assert.ErrorIs(t, h.tasks.Remove(ctx, "u1", date, task.ID), entities.ErrNotFound)
}

func TestTaskService_CarryOver(t *testing.T) {
	ctx := context.Background()
	h := newHarness("2025-06-02T09:00:00Z")
	source := entities.NewDate(2025, time.June, 2)
	target := entities.NewDate(2025, time.June, 3)

	pending, err := h.tasks.Upsert(ctx, "u1", source, ports.UpsertTaskRequest{
		Description: "Migrate billing exports", Status: entities.TaskStatusPending, Hours: 4,
	})
	require.NoError(t, err)
	inProgress, err := h.tasks.Upsert(ctx, "u1", source, ports.UpsertTaskRequest{
		Description: "Write audit doc", Status: entities.TaskStatusInProgress, Hours: 2,
	})
	require.NoError(t, err)
	_, err = h.tasks.Upsert(ctx, "u1", source, ports.UpsertTaskRequest{
		Description: "Stand-up", Status: entities.TaskStatusCompleted, Hours: 1,
	})
	require.NoError(t, err)

	candidates, err := h.tasks.CarryOverCandidates(ctx, "u1", source)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	newHours := 1
	carried, err := h.tasks.CarryOver(ctx, "u1", ports.CarryOverRequest{
		SourceDate: source,
		TargetDate: target,
		TaskIDs:    []string{pending.ID, inProgress.ID},
		Edits: map[string]ports.TaskEdit{
			inProgress.ID: {Hours: &newHours},
		},
	})
	require.NoError(t, err)
	require.Len(t, carried, 2)

	// fresh identities on the target day, edits applied
	assert.NotEqual(t, pending.ID, carried[0].ID)
	assert.Equal(t, target, carried[0].Date)
	assert.Equal(t, 4, carried[0].Hours)
	assert.Equal(t, 1, carried[1].Hours)

	// source day untouched
	sourceTasks, err := h.tasks.List(ctx, "u1", source)
	require.NoError(t, err)
	assert.Len(t, sourceTasks, 3)

	targetTasks, err := h.tasks.List(ctx, "u1", target)
	require.NoError(t, err)
	assert.Len(t, targetTasks, 2)
}

func TestTaskService_CarryOverIneligibleRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness("2025-06-02T09:00:00Z")
	source := entities.NewDate(2025, time.June, 2)
	target := entities.NewDate(2025, time.June, 3)

	done, err := h.tasks.Upsert(ctx, "u1", source, ports.UpsertTaskRequest{
		Description: "Ship release", Status: entities.TaskStatusCompleted, Hours: 3,
	})
	require.NoError(t, err)

	_, err = h.tasks.CarryOver(ctx, "u1", ports.CarryOverRequest{
		SourceDate: source, TargetDate: target, TaskIDs: []string{done.ID},
	})
	assert.ErrorIs(t, err, entities.ErrTaskNotEligible)

	// nothing written on failure
	targetTasks, err := h.tasks.List(ctx, "u1", target)
	require.NoError(t, err)
	assert.Empty(t, targetTasks)
}

func TestTaskService_CarryOverValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness("2025-06-02T09:00:00Z")
	source := entities.NewDate(2025, time.June, 2)

	_, err := h.tasks.CarryOver(ctx, "u1", ports.CarryOverRequest{
		SourceDate: source, TargetDate: source, TaskIDs: []string{"t1"},
	})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = h.tasks.CarryOver(ctx, "u1", ports.CarryOverRequest{
		SourceDate: source, TargetDate: source.AddDays(1),
	})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = h.tasks.CarryOver(ctx, "u1", ports.CarryOverRequest{
		SourceDate: source, TargetDate: source.AddDays(1), TaskIDs: []string{"missing"},
	})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
