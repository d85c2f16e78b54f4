package models

// Priority is a reference row; tasks copy its XP at creation.
type Priority struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	XP   int    `gorm:"not null" json:"xp"`
}
