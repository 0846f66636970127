package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	store ports.KeyValueRangeStore
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(store ports.KeyValueRangeStore) ports.TaskRepository {
	return &TaskRepositoryImpl{store: store}
}

// storedTask is the wire form at tasks/{userId}/{date}/{taskId}. Identity
// fields are carried by the path and restored from it on read.
type storedTask struct {
	Description string              `json:"description"`
	Status      entities.TaskStatus `json:"status"`
	Hours       int                 `json:"hours"`
	AddedOn     time.Time           `json:"addedOn"`
	UpdatedOn   time.Time           `json:"updatedOn"`
}

func (r *TaskRepositoryImpl) List(ctx context.Context, userID string, date entities.Date) ([]entities.TaskRecord, error) {
	raw, err := r.store.Get(ctx, taskBucketPath(userID, date))
	if errors.Is(err, entities.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks %s/%s: %w", userID, date, err)
	}

	var bucket map[string]storedTask
	if err := json.Unmarshal(raw, &bucket); err != nil {
		return nil, fmt.Errorf("decode task bucket %s/%s: %w", userID, date, err)
	}

	tasks := make([]entities.TaskRecord, 0, len(bucket))
	for id, stored := range bucket {
		tasks = append(tasks, restore(id, userID, date, stored))
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].AddedOn.Equal(tasks[j].AddedOn) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].AddedOn.Before(tasks[j].AddedOn)
	})
	return tasks, nil
}

func (r *TaskRepositoryImpl) Get(ctx context.Context, userID string, date entities.Date, id string) (*entities.TaskRecord, error) {
	raw, err := r.store.Get(ctx, taskPath(userID, date, id))
	if err != nil {
		return nil, err
	}

	var stored storedTask
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", id, err)
	}
	task := restore(id, userID, date, stored)
	return &task, nil
}

func (r *TaskRepositoryImpl) Save(ctx context.Context, task *entities.TaskRecord) error {
	if err := r.store.Set(ctx, taskPath(task.UserID, task.Date, task.ID), toStored(task)); err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}

func (r *TaskRepositoryImpl) SaveAll(ctx context.Context, userID string, date entities.Date, tasks []entities.TaskRecord) error {
	if len(tasks) == 0 {
		return nil
	}

	children := make(map[string]any, len(tasks))
	for i := range tasks {
		children[tasks[i].ID] = toStored(&tasks[i])
	}
	if err := r.store.Update(ctx, taskBucketPath(userID, date), children); err != nil {
		return fmt.Errorf("save %d tasks %s/%s: %w", len(tasks), userID, date, err)
	}
	return nil
}

func (r *TaskRepositoryImpl) Remove(ctx context.Context, userID string, date entities.Date, id string) error {
	if err := r.store.Remove(ctx, taskPath(userID, date, id)); err != nil {
		return fmt.Errorf("remove task %s: %w", id, err)
	}
	return nil
}

func toStored(task *entities.TaskRecord) storedTask {
	return storedTask{
		Description: task.Description,
		Status:      task.Status,
		Hours:       task.Hours,
		AddedOn:     task.AddedOn,
		UpdatedOn:   task.UpdatedOn,
	}
}

func restore(id, userID string, date entities.Date, stored storedTask) entities.TaskRecord {
	return entities.TaskRecord{
		ID:          id,
		UserID:      userID,
		Date:        date,
		Description: stored.Description,
		Status:      stored.Status,
		Hours:       stored.Hours,
		AddedOn:     stored.AddedOn,
		UpdatedOn:   stored.UpdatedOn,
	}
}
