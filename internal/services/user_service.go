package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/dayoff"
	"github.com/yukikurage/xp-task-api/internal/lock"
	"github.com/yukikurage/xp-task-api/internal/models"
	"github.com/yukikurage/xp-task-api/internal/repository"
	"gorm.io/gorm"
)

// UserService handles the user's profile and days off.
type UserService struct {
	store  repository.Store
	locker lock.Locker
	clock  calendar.Clock
}

func NewUserService(store repository.Store, locker lock.Locker, clock calendar.Clock) *UserService {
	return &UserService{
		store:  store,
		locker: locker,
		clock:  clock,
	}
}

// DayOffResult is the user after a day-off change and the due dates it moved.
type DayOffResult struct {
	User  *models.User
	Moves []dayoff.Move
}

// GetProfile returns the user with days off loaded.
func (s *UserService) GetProfile(userID uint64) (*models.User, error) {
	user, err := s.store.Users().FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// SetDayOff declares date off and pushes pending due dates past the days off.
func (s *UserService) SetDayOff(ctx context.Context, userID uint64, date time.Time) (*DayOffResult, error) {
	today := s.clock.Today()
	return s.changeDaysOff(ctx, userID, func(w *workspace) error {
		deadlines := make([]time.Time, 0, len(w.tasks))
		for _, t := range w.tasks {
			deadlines = append(deadlines, t.Deadline)
		}
		if err := dayoff.CheckTake(w.user.DaysOffPerWeek, w.user.DayOffSet(), deadlines, date, today); err != nil {
			return err
		}
		w.user.TakeDayOff(date)
		return nil
	})
}

// RemoveDayOff gives date back. Due dates are never pulled earlier; the freed
// date simply becomes available to later relocations.
func (s *UserService) RemoveDayOff(ctx context.Context, userID uint64, date time.Time) (*DayOffResult, error) {
	today := s.clock.Today()
	return s.changeDaysOff(ctx, userID, func(w *workspace) error {
		if err := dayoff.CheckReturn(w.user.DayOffSet(), date, today); err != nil {
			return err
		}
		w.user.ReturnDayOff(date)
		return nil
	})
}

func (s *UserService) changeDaysOff(ctx context.Context, userID uint64, change func(w *workspace) error) (*DayOffResult, error) {
	today := s.clock.Today()
	result := &DayOffResult{}

	err := mutate(ctx, s.store, s.locker, userID, func(w *workspace) error {
		if err := change(w); err != nil {
			return err
		}

		result.Moves = dayoff.Relocate(w.graph, w.user.DayOffSet(), today)
		moved := make([]uint64, len(result.Moves))
		for i, m := range result.Moves {
			moved[i] = m.TaskID
		}

		if err := w.saveUser(); err != nil {
			return err
		}
		if err := w.flush(moved...); err != nil {
			return err
		}
		result.User = w.user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Moves) > 0 {
		log.Printf("Relocated %d task(s) for user %d", len(result.Moves), userID)
	}
	return result, nil
}
