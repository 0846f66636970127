package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/ports"
)

// HolidayRepositoryImpl implements the HolidayRepository interface
type HolidayRepositoryImpl struct {
	store ports.KeyValueRangeStore
}

// NewHolidayRepository creates a new holiday repository
func NewHolidayRepository(store ports.KeyValueRangeStore) ports.HolidayRepository {
	return &HolidayRepositoryImpl{store: store}
}

func (r *HolidayRepositoryImpl) Get(ctx context.Context, date entities.Date) (string, error) {
	raw, err := r.store.Get(ctx, holidayPath(date))
	if err != nil {
		return "", err
	}

	var reason string
	if err := json.Unmarshal(raw, &reason); err != nil {
		return "", fmt.Errorf("decode holiday %s: %w", date, err)
	}
	return reason, nil
}

func (r *HolidayRepositoryImpl) Range(ctx context.Context, start, end entities.Date) ([]entities.Holiday, error) {
	rows, err := r.store.RangeQuery(ctx, holidaysRoot, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}

	holidays := make([]entities.Holiday, 0, len(rows))
	for _, row := range rows {
		date, err := entities.ParseDate(row.Key)
		if err != nil {
			return nil, fmt.Errorf("holiday key %q: %w", row.Key, err)
		}
		var reason string
		if err := json.Unmarshal(row.Value, &reason); err != nil {
			return nil, fmt.Errorf("decode holiday %s: %w", row.Key, err)
		}
		holidays = append(holidays, entities.Holiday{Date: date, Reason: reason})
	}
	return holidays, nil
}

func (r *HolidayRepositoryImpl) Set(ctx context.Context, date entities.Date, reason string) error {
	if err := r.store.Set(ctx, holidayPath(date), reason); err != nil {
		return fmt.Errorf("save holiday %s: %w", date, err)
	}
	return nil
}

func (r *HolidayRepositoryImpl) Remove(ctx context.Context, date entities.Date) error {
	if err := r.store.Remove(ctx, holidayPath(date)); err != nil {
		return fmt.Errorf("remove holiday %s: %w", date, err)
	}
	return nil
}

func (r *HolidayRepositoryImpl) BulkSet(ctx context.Context, holidays []entities.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}

	children := make(map[string]any, len(holidays))
	for _, holiday := range holidays {
		children[holiday.Date.String()] = holiday.Reason
	}
	if err := r.store.Update(ctx, holidaysRoot, children); err != nil {
		return fmt.Errorf("bulk save %d holidays: %w", len(holidays), err)
	}
	return nil
}
