package dto

import (
	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/dayoff"
	"github.com/yukikurage/xp-task-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// ProfileDTO is the user together with their progress and days off
type ProfileDTO struct {
	UserDTO
	CurrentXP        int      `json:"current_xp"`
	CurrentStreak    int      `json:"current_streak"`
	LastAchievedDate *string  `json:"last_achieved_date"`
	DailyXPQuota     int      `json:"daily_xp_quota"`
	DaysOffLeft      int      `json:"days_off_left"`
	DaysOff          []string `json:"days_off"`
}

// MoveDTO reports one relocated due date
type MoveDTO struct {
	TaskID uint64 `json:"task_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// DayOffResponse is returned after a day off is set or removed
type DayOffResponse struct {
	User  ProfileDTO `json:"user"`
	Moves []MoveDTO  `json:"moved_tasks"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToProfileDTO converts a User model to ProfileDTO
func ToProfileDTO(user models.User) ProfileDTO {
	daysOff := make([]string, 0, len(user.DaysOff))
	for _, d := range user.DayOffSet().Sorted() {
		daysOff = append(daysOff, calendar.Format(d))
	}

	return ProfileDTO{
		UserDTO:          ToUserDTO(user),
		CurrentXP:        user.Progress.CurrentXP,
		CurrentStreak:    user.Progress.CurrentStreak,
		LastAchievedDate: calendar.FormatPtr(user.Progress.LastAchievedDate),
		DailyXPQuota:     user.DailyXPQuota,
		DaysOffLeft:      user.DaysOffPerWeek,
		DaysOff:          daysOff,
	}
}

// ToDayOffResponse converts the outcome of a day-off change
func ToDayOffResponse(user models.User, moves []dayoff.Move) DayOffResponse {
	out := DayOffResponse{
		User:  ToProfileDTO(user),
		Moves: make([]MoveDTO, len(moves)),
	}
	for i, m := range moves {
		out.Moves[i] = MoveDTO{
			TaskID: m.TaskID,
			From:   calendar.Format(m.From),
			To:     calendar.Format(m.To),
		}
	}
	return out
}
