package services

import (
	"context"
	"fmt"

	"github.com/attendly/core/internal/domain/calendar"
	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// HolidayService handles the organization holiday calendar
type HolidayService struct {
	holidayRepo ports.HolidayRepository
	cache       *OverviewCache
	logger      *logger.Logger
}

// NewHolidayService creates a new holiday service
func NewHolidayService(holidayRepo ports.HolidayRepository, cache *OverviewCache, logger *logger.Logger) *HolidayService {
	return &HolidayService{
		holidayRepo: holidayRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Get returns the holiday on date, or entities.ErrNotFound.
func (s *HolidayService) Get(ctx context.Context, date entities.Date) (*entities.Holiday, error) {
	reason, err := s.holidayRepo.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	return &entities.Holiday{Date: date, Reason: reason}, nil
}

// Range returns holidays in [start, end] ordered by date.
func (s *HolidayService) Range(ctx context.Context, start, end entities.Date) ([]entities.Holiday, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end before start", entities.ErrValidation)
	}
	return s.holidayRepo.Range(ctx, start, end)
}

// Set declares date a holiday with the given reason, replacing any previous
// reason on that date.
func (s *HolidayService) Set(ctx context.Context, date entities.Date, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: holiday reason is required", entities.ErrValidation)
	}
	if err := s.holidayRepo.Set(ctx, date, reason); err != nil {
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("Holiday set", "date", date.String(), "reason", reason)
	return nil
}

// Remove deletes the holiday on date. Removing an absent date is a no-op.
func (s *HolidayService) Remove(ctx context.Context, date entities.Date) error {
	if err := s.holidayRepo.Remove(ctx, date); err != nil {
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("Holiday removed", "date", date.String())
	return nil
}

// FillWeekends writes a weekend holiday for every Saturday and Sunday in
// [start, end] in one bulk write, overwriting other reasons on those dates.
// The written holidays are returned in date order.
func (s *HolidayService) FillWeekends(ctx context.Context, start, end entities.Date) ([]entities.Holiday, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end before start", entities.ErrValidation)
	}

	weekends := calendar.WeekendsBetween(start, end)
	holidays := make([]entities.Holiday, 0, len(weekends))
	for _, date := range weekends {
		holidays = append(holidays, entities.Holiday{Date: date, Reason: entities.HolidayReasonWeekend})
	}
	if len(holidays) == 0 {
		return holidays, nil
	}

	if err := s.holidayRepo.BulkSet(ctx, holidays); err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	s.logger.Info("Weekend holidays filled",
		"start", start.String(), "end", end.String(), "count", len(holidays))
	return holidays, nil
}
