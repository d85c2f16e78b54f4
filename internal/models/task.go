package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	UserID      uint64         `gorm:"not null;index" json:"user_id"`
	ParentID    *uint64        `gorm:"index" json:"parent_id"`
	PriorityID  uint64         `gorm:"not null" json:"priority_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:varchar(500)" json:"description"`
	DueDate     *time.Time     `gorm:"type:date" json:"due_date"`
	Deadline    time.Time      `gorm:"type:date;not null" json:"deadline"`
	RemainingXP int            `gorm:"not null;default:0" json:"remaining_xp"`
	Done        bool           `gorm:"not null;default:false" json:"done"`
	PenalizedOn *time.Time     `gorm:"type:date" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Priority Priority `gorm:"foreignKey:PriorityID" json:"priority,omitempty"`
	Subtasks []Task   `gorm:"foreignKey:ParentID" json:"subtasks,omitempty"`
}
