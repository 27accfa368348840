package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrTraineeNotFound = errors.New("trainee not found")

type Trainee struct {
	ID uint `gorm:"primaryKey"`

	UserID uint `gorm:"not null;uniqueIndex"`
	User   User `gorm:"foreignKey:UserID"`

	Name            string `gorm:"not null"`
	Phone           string
	PostingLocation string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type TraineeDAO struct {
	db *gorm.DB
}

func NewTraineeDAO(db *gorm.DB) *TraineeDAO {
	return &TraineeDAO{
		db: db,
	}
}

// Insert creates the trainee's login user and profile row in one
// transaction.
func (d *TraineeDAO) Insert(ctx context.Context, user User, trainee Trainee) (Trainee, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&user); result.Error != nil {
			return result.Error
		}

		trainee.UserID = user.ID
		if result := tx.Create(&trainee); result.Error != nil {
			return result.Error
		}

		return nil
	})
	if err != nil {
		if isUniqueViolation(err, `unique constraint "uni_users_email"`) {
			return Trainee{}, ErrUserEmailExists
		}

		return Trainee{}, err
	}

	trainee.User = user

	return trainee, nil
}

func (d *TraineeDAO) FindByID(ctx context.Context, id uint) (Trainee, error) {
	var trainee Trainee

	result := d.db.WithContext(ctx).Preload("User").First(&trainee, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Trainee{}, ErrTraineeNotFound
		}

		return Trainee{}, result.Error
	}

	return trainee, nil
}

func (d *TraineeDAO) FindByUserID(ctx context.Context, userID uint) (Trainee, error) {
	var trainee Trainee

	result := d.db.WithContext(ctx).Preload("User").First(&trainee, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Trainee{}, ErrTraineeNotFound
		}

		return Trainee{}, result.Error
	}

	return trainee, nil
}
