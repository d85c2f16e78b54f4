package services

import (
	"context"
	"log"
	"time"

	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/lock"
	"github.com/yukikurage/xp-task-api/internal/progress"
	"github.com/yukikurage/xp-task-api/internal/repository"
)

// JobReport summarizes one batch run.
type JobReport struct {
	Job       string
	Processed int
	Changed   int
	Failed    int
}

// JobService runs the periodic reconciliations. Each user is handled in its
// own transaction; a failing user is logged and skipped.
type JobService struct {
	store          repository.Store
	locker         lock.Locker
	clock          calendar.Clock
	daysOffPerWeek int
}

func NewJobService(store repository.Store, locker lock.Locker, clock calendar.Clock, daysOffPerWeek int) *JobService {
	return &JobService{
		store:          store,
		locker:         locker,
		clock:          clock,
		daysOffPerWeek: daysOffPerWeek,
	}
}

// RunDaily closes yesterday's streaks and penalizes tasks overdue as of today.
// On Mondays the weekly day-off reset runs after the sweep, so Sunday's days
// off still count when Sunday is closed.
func (s *JobService) RunDaily(ctx context.Context) []JobReport {
	today := s.clock.Today()
	reports := []JobReport{s.RunDailyStreakSweep(ctx, calendar.AddDays(today, -1))}
	if today.Weekday() == time.Monday {
		reports = append(reports, s.ResetWeeklyDaysOff(ctx))
	}
	return append(reports, s.PenalizeOverdueTasks(ctx, today))
}

// RunDailyStreakSweep credits users whose balance reached quota without day
// being credited, then resets the streak of users who missed day while not off.
// Running it twice for the same day changes nothing the second time.
func (s *JobService) RunDailyStreakSweep(ctx context.Context, day time.Time) JobReport {
	report := JobReport{Job: "streak sweep"}

	met, err := s.store.Users().FindUsersWithQuotaMet(day)
	if err != nil {
		log.Printf("[jobs] %s: failed to load users who met quota: %v", report.Job, err)
		report.Failed++
	}
	for _, u := range met {
		s.forUser(ctx, &report, u.ID, func(w *workspace) (bool, error) {
			next, changed := progress.ReconcileQuota(w.user.Progress, w.user.DailyXPQuota, w.user.DayOffSet(), day)
			if !changed {
				return false, nil
			}
			w.user.ApplyProgress(next)
			return true, w.store.Users().Save(w.user)
		})
	}

	missed, err := s.store.Users().FindUsersWhoMissedQuota(day)
	if err != nil {
		log.Printf("[jobs] %s: failed to load users who missed quota: %v", report.Job, err)
		report.Failed++
	}
	for _, u := range missed {
		s.forUser(ctx, &report, u.ID, func(w *workspace) (bool, error) {
			if w.user.Progress.CurrentStreak == 0 || !progress.MissedQuota(w.user.Progress, w.user.DayOffSet(), day) {
				return false, nil
			}
			w.user.ApplyProgress(progress.ResetStreak(w.user.Progress))
			return true, w.store.Users().Save(w.user)
		})
	}

	s.logReport(report)
	return report
}

// PenalizeOverdueTasks takes one XP from the owner of every pending task whose
// deadline is before day. A task is penalized at most once per day.
func (s *JobService) PenalizeOverdueTasks(ctx context.Context, day time.Time) JobReport {
	report := JobReport{Job: "overdue penalty"}

	tasks, err := s.store.Tasks().FindPastDeadline(day)
	if err != nil {
		log.Printf("[jobs] %s: failed to load overdue tasks: %v", report.Job, err)
		report.Failed++
		s.logReport(report)
		return report
	}

	byUser := make(map[uint64][]uint64)
	var order []uint64
	for _, t := range tasks {
		if _, seen := byUser[t.UserID]; !seen {
			order = append(order, t.UserID)
		}
		byUser[t.UserID] = append(byUser[t.UserID], t.ID)
	}

	for _, userID := range order {
		taskIDs := byUser[userID]
		s.forUser(ctx, &report, userID, func(w *workspace) (bool, error) {
			var penalized []uint64
			for _, id := range taskIDs {
				t, ok := w.tasks[id]
				if !ok || t.Done || !calendar.Before(t.Deadline, day) {
					continue
				}
				if t.PenalizedOn != nil && calendar.Equal(*t.PenalizedOn, day) {
					continue
				}
				d := calendar.Truncate(day)
				t.PenalizedOn = &d
				penalized = append(penalized, id)
			}
			if len(penalized) == 0 {
				return false, nil
			}

			w.user.ApplyProgress(progress.Penalize(w.user.Progress, len(penalized)))
			if err := w.store.Users().Save(w.user); err != nil {
				return false, err
			}
			return true, w.flush(penalized...)
		})
	}

	s.logReport(report)
	return report
}

// ResetWeeklyDaysOff drops every day off before the current week and restores
// the allowance, less the days already taken this week.
func (s *JobService) ResetWeeklyDaysOff(ctx context.Context) JobReport {
	report := JobReport{Job: "weekly day-off reset"}
	weekStart := calendar.StartOfWeek(s.clock.Today())

	ids, err := s.store.Users().FindAllIDs()
	if err != nil {
		log.Printf("[jobs] %s: failed to load users: %v", report.Job, err)
		report.Failed++
		s.logReport(report)
		return report
	}

	for _, id := range ids {
		s.forUser(ctx, &report, id, func(w *workspace) (bool, error) {
			if !w.user.ResetWeek(s.daysOffPerWeek, weekStart) {
				return false, nil
			}
			return true, w.saveUser()
		})
	}

	s.logReport(report)
	return report
}

// forUser runs fn for one user and records the outcome in report.
func (s *JobService) forUser(ctx context.Context, report *JobReport, userID uint64, fn func(w *workspace) (bool, error)) {
	report.Processed++

	var changed bool
	err := mutate(ctx, s.store, s.locker, userID, func(w *workspace) error {
		var err error
		changed, err = fn(w)
		return err
	})
	if err != nil {
		log.Printf("[jobs] %s: user %d skipped: %v", report.Job, userID, err)
		report.Failed++
		return
	}
	if changed {
		report.Changed++
	}
}

func (s *JobService) logReport(r JobReport) {
	log.Printf("[jobs] %s: processed=%d changed=%d failed=%d", r.Job, r.Processed, r.Changed, r.Failed)
}
