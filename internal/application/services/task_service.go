package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// TaskService handles the daily task ledger
type TaskService struct {
	taskRepo ports.TaskRepository
	clock    ports.Clock
	ids      ports.IdentityGenerator
	logger   *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, clock ports.Clock, ids ports.IdentityGenerator, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		clock:    clock,
		ids:      ids,
		logger:   logger,
	}
}

// List returns the day's tasks in the order they were added.
func (s *TaskService) List(ctx context.Context, userID string, date entities.Date) ([]entities.TaskRecord, error) {
	return s.taskRepo.List(ctx, userID, date)
}

// Upsert creates a task when req.ID is empty and edits the existing one
// otherwise. An explicit unknown ID is rejected, not treated as a create.
func (s *TaskService) Upsert(ctx context.Context, userID string, date entities.Date, req ports.UpsertTaskRequest) (*entities.TaskRecord, error) {
	now := s.clock.Now()

	var task *entities.TaskRecord
	if req.ID == "" {
		task = &entities.TaskRecord{
			ID:      s.ids.NewID(),
			UserID:  userID,
			Date:    date,
			AddedOn: now,
		}
	} else {
		existing, err := s.taskRepo.Get(ctx, userID, date, req.ID)
		if err != nil {
			return nil, err
		}
		task = existing
	}

	task.Description = req.Description
	task.Status = req.Status
	task.Hours = req.Hours
	task.UpdatedOn = now

	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "task_upsert", map[string]interface{}{
		"task_id": task.ID, "date": date.String(), "status": string(task.Status),
	})
	return task, nil
}

// Remove deletes one task from the day's log.
func (s *TaskService) Remove(ctx context.Context, userID string, date entities.Date, id string) error {
	if _, err := s.taskRepo.Get(ctx, userID, date, id); err != nil {
		return err
	}
	if err := s.taskRepo.Remove(ctx, userID, date, id); err != nil {
		return err
	}

	s.logger.LogUserAction(userID, "task_remove", map[string]interface{}{
		"task_id": id, "date": date.String(),
	})
	return nil
}

// CarryOverCandidates returns the day's unfinished tasks, the ones offered
// for carrying into a later day.
func (s *TaskService) CarryOverCandidates(ctx context.Context, userID string, date entities.Date) ([]entities.TaskRecord, error) {
	tasks, err := s.taskRepo.List(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	candidates := make([]entities.TaskRecord, 0, len(tasks))
	for _, task := range tasks {
		if task.Status.CarriesOver() {
			candidates = append(candidates, task)
		}
	}
	return candidates, nil
}

// CarryOver copies the selected unfinished tasks into the target day under
// fresh identities, applying any per-task edits. Source records are left
// untouched. Eligibility is re-checked against the stored records at commit
// time, so a task finished since the candidate list was fetched fails the
// whole request.
func (s *TaskService) CarryOver(ctx context.Context, userID string, req ports.CarryOverRequest) ([]entities.TaskRecord, error) {
	if len(req.TaskIDs) == 0 {
		return nil, fmt.Errorf("%w: no tasks selected", entities.ErrValidation)
	}
	if !req.SourceDate.Before(req.TargetDate) {
		return nil, fmt.Errorf("%w: target date must be after source date", entities.ErrValidation)
	}

	now := s.clock.Now()
	carried := make([]entities.TaskRecord, 0, len(req.TaskIDs))
	for _, id := range req.TaskIDs {
		source, err := s.taskRepo.Get(ctx, userID, req.SourceDate, id)
		if errors.Is(err, entities.ErrNotFound) {
			return nil, fmt.Errorf("%w: task %s", entities.ErrNotFound, id)
		}
		if err != nil {
			return nil, err
		}
		if !source.Status.CarriesOver() {
			return nil, fmt.Errorf("%w: task %s is %s", entities.ErrTaskNotEligible, id, source.Status)
		}

		task := entities.TaskRecord{
			ID:          s.ids.NewID(),
			UserID:      userID,
			Date:        req.TargetDate,
			Description: source.Description,
			Status:      source.Status,
			Hours:       source.Hours,
			AddedOn:     now,
			UpdatedOn:   now,
		}
		if edit, ok := req.Edits[id]; ok {
			if edit.Status != nil {
				task.Status = *edit.Status
			}
			if edit.Hours != nil {
				task.Hours = *edit.Hours
			}
		}
		if err := task.Validate(); err != nil {
			return nil, fmt.Errorf("task %s: %w", id, err)
		}
		carried = append(carried, task)
	}

	if err := s.taskRepo.SaveAll(ctx, userID, req.TargetDate, carried); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "task_carry_over", map[string]interface{}{
		"source": req.SourceDate.String(),
		"target": req.TargetDate.String(),
		"count":  len(carried),
	})
	return carried, nil
}
