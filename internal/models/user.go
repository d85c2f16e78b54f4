package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/xp-task-api/internal/calendar"
)

// Progress is the XP/streak state of a user. Its three fields only ever change
// together, through User.ApplyProgress.
type Progress struct {
	CurrentXP        int        `gorm:"not null;default:0" json:"current_xp"`
	CurrentStreak    int        `gorm:"not null;default:0" json:"current_streak"`
	LastAchievedDate *time.Time `gorm:"type:date" json:"last_achieved_date"`
}

type User struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Username       string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash   string         `gorm:"type:varchar(255);not null" json:"-"`
	Progress       Progress       `gorm:"embedded" json:"progress"`
	DailyXPQuota   int            `gorm:"not null" json:"daily_xp_quota"`
	DaysOffPerWeek int            `gorm:"not null" json:"days_off_per_week"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	DaysOff []DayOff `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"days_off,omitempty"`
	Tasks   []Task   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// DayOff is one date a user declared off.
type DayOff struct {
	UserID uint64    `gorm:"primarykey" json:"-"`
	Date   time.Time `gorm:"primarykey;type:date" json:"date"`
}

func (DayOff) TableName() string {
	return "user_days_off"
}

// DayOffSet returns the user's declared days off.
func (u *User) DayOffSet() calendar.Set {
	set := make(calendar.Set, len(u.DaysOff))
	for _, d := range u.DaysOff {
		set.Add(d.Date)
	}
	return set
}

// IsOffOn reports whether the user declared d off.
func (u *User) IsOffOn(d time.Time) bool {
	for _, off := range u.DaysOff {
		if calendar.Equal(off.Date, d) {
			return true
		}
	}
	return false
}

// ApplyProgress replaces the user's XP/streak state.
func (u *User) ApplyProgress(p Progress) {
	u.Progress = p
}

// TakeDayOff records d as a day off and spends one unit of the weekly allowance.
// Guards live in the dayoff package; this only mutates.
func (u *User) TakeDayOff(d time.Time) {
	u.DaysOff = append(u.DaysOff, DayOff{UserID: u.ID, Date: calendar.Truncate(d)})
	u.DaysOffPerWeek--
}

// ReturnDayOff removes d from the days off and refunds the allowance.
func (u *User) ReturnDayOff(d time.Time) {
	kept := u.DaysOff[:0]
	for _, off := range u.DaysOff {
		if !calendar.Equal(off.Date, d) {
			kept = append(kept, off)
		}
	}
	u.DaysOff = kept
	u.DaysOffPerWeek++
}

// ResetWeek drops the days off before weekStart and restores the weekly
// allowance minus the days kept. It reports whether anything changed.
func (u *User) ResetWeek(allowance int, weekStart time.Time) bool {
	var kept []DayOff
	for _, off := range u.DaysOff {
		if !calendar.Before(off.Date, weekStart) {
			kept = append(kept, off)
		}
	}
	left := max(allowance-len(kept), 0)
	if len(kept) == len(u.DaysOff) && u.DaysOffPerWeek == left {
		return false
	}
	u.DaysOff = kept
	u.DaysOffPerWeek = left
	return true
}
