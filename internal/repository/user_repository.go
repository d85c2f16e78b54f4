package repository

import (
	"time"

	"github.com/yukikurage/xp-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Omit(clause.Associations).Create(user).Error
}

// FindByID finds a user by ID with days off loaded
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("DaysOff", orderByDate).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Save writes the user's own columns
func (r *GormUserRepository) Save(user *models.User) error {
	return r.db.Omit(clause.Associations).Save(user).Error
}

// ReplaceDaysOff stores exactly the given days off for a user
func (r *GormUserRepository) ReplaceDaysOff(userID uint64, daysOff []models.DayOff) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.DayOff{}).Error; err != nil {
			return err
		}
		if len(daysOff) == 0 {
			return nil
		}
		rows := make([]models.DayOff, len(daysOff))
		for i, d := range daysOff {
			rows[i] = models.DayOff{UserID: userID, Date: d.Date}
		}
		return tx.Create(&rows).Error
	})
}

// FindUsersWithQuotaMet returns users whose XP reached their quota and who
// have not been credited for day yet
func (r *GormUserRepository) FindUsersWithQuotaMet(day time.Time) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Preload("DaysOff", orderByDate).
		Where("current_xp >= daily_xp_quota").
		Where("(last_achieved_date IS NULL OR last_achieved_date < ?)", day).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindUsersWhoMissedQuota returns users with a running streak who were
// neither credited for day nor off on it
func (r *GormUserRepository) FindUsersWhoMissedQuota(day time.Time) ([]models.User, error) {
	offOnDay := r.db.Model(&models.DayOff{}).
		Select("1").
		Where("user_days_off.user_id = users.id").
		Where("user_days_off.date = ?", day)

	var users []models.User
	err := r.db.
		Preload("DaysOff", orderByDate).
		Where("current_streak > 0").
		Where("(last_achieved_date IS NULL OR last_achieved_date < ?)", day).
		Where("NOT EXISTS (?)", offOnDay).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindAllIDs lists the ids of every user
func (r *GormUserRepository) FindAllIDs() ([]uint64, error) {
	var ids []uint64
	if err := r.db.Model(&models.User{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func orderByDate(db *gorm.DB) *gorm.DB {
	return db.Order("date ASC")
}
