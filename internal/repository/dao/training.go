package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrTrainingNotFound = errors.New("training not found")

type Training struct {
	ID uint `gorm:"primaryKey"`

	Name           string  `gorm:"not null"`
	Venue          string  `gorm:"not null"`
	Latitude       float64 `gorm:"not null"`
	Longitude      float64 `gorm:"not null"`
	GeofenceRadius uint    `gorm:"not null;default:100"`

	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	Timezone  string    `gorm:"not null;default:'UTC'"`

	QRToken       *string
	TokenIssuedAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type TrainingDAO struct {
	db *gorm.DB
}

func NewTrainingDAO(db *gorm.DB) *TrainingDAO {
	return &TrainingDAO{
		db: db,
	}
}

func (d *TrainingDAO) Insert(ctx context.Context, training Training) (Training, error) {
	result := d.db.WithContext(ctx).Create(&training)
	if result.Error != nil {
		return Training{}, result.Error
	}

	return training, nil
}

func (d *TrainingDAO) FindByID(ctx context.Context, id uint) (Training, error) {
	var training Training

	result := d.db.WithContext(ctx).First(&training, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Training{}, ErrTrainingNotFound
		}

		return Training{}, result.Error
	}

	return training, nil
}

func (d *TrainingDAO) FindAll(ctx context.Context) ([]Training, error) {
	var trainings []Training

	result := d.db.WithContext(ctx).Order("start_date").Find(&trainings)
	if result.Error != nil {
		return nil, result.Error
	}

	return trainings, nil
}

// UpdateToken overwrites the training's current admission token. The
// write is a single UPDATE so two racing rotations cannot leave a torn
// token/timestamp pair.
func (d *TrainingDAO) UpdateToken(ctx context.Context, id uint, token string, issuedAt time.Time) error {
	result := d.db.WithContext(ctx).
		Model(&Training{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"qr_token":        token,
			"token_issued_at": issuedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTrainingNotFound
	}

	return nil
}
