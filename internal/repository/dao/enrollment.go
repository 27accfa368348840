package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrEnrollmentExists   = errors.New("enrollment already exists")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

type Enrollment struct {
	ID uint `gorm:"primaryKey"`

	TraineeID  uint `gorm:"not null;uniqueIndex:idx_enrollments_trainee_training"`
	TrainingID uint `gorm:"not null;uniqueIndex:idx_enrollments_trainee_training"`
	Active     bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EnrollmentDAO struct {
	db *gorm.DB
}

func NewEnrollmentDAO(db *gorm.DB) *EnrollmentDAO {
	return &EnrollmentDAO{
		db: db,
	}
}

func (d *EnrollmentDAO) Insert(ctx context.Context, enrollment Enrollment) (Enrollment, error) {
	result := d.db.WithContext(ctx).Create(&enrollment)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "idx_enrollments_trainee_training") {
			return Enrollment{}, ErrEnrollmentExists
		}

		return Enrollment{}, result.Error
	}

	return enrollment, nil
}

func (d *EnrollmentDAO) FindActive(ctx context.Context, traineeID, trainingID uint) (Enrollment, error) {
	var enrollment Enrollment

	result := d.db.WithContext(ctx).
		First(&enrollment, "trainee_id = ? AND training_id = ? AND active", traineeID, trainingID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Enrollment{}, ErrEnrollmentNotFound
		}

		return Enrollment{}, result.Error
	}

	return enrollment, nil
}

// Deactivate revokes access without deleting the row.
func (d *EnrollmentDAO) Deactivate(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).
		Model(&Enrollment{}).
		Where("id = ?", id).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEnrollmentNotFound
	}

	return nil
}
