package dao

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrDuplicateAttendance = errors.New("attendance already recorded for this trainee, training and date")
	ErrAttendanceNotFound  = errors.New("attendance record not found")
)

const dateLayout = "2006-01-02"

// Date is a venue-local calendar date held in the YYYY-MM-DD shape on
// both sides of the driver. Postgres returns date columns as time.Time,
// which database/sql would otherwise render into a plain string as
// RFC3339.
type Date string

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = Date(v.Format(dateLayout))
	case string:
		*d = Date(v)
	case []byte:
		*d = Date(v)
	default:
		return fmt.Errorf("unsupported date column type %T", value)
	}

	return nil
}

func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}

// Attendance rows are append-only. The composite unique index is the
// authority on duplicate suppression; the validator's pre-check is
// only a fast path.
type Attendance struct {
	ID uint `gorm:"primaryKey"`

	TraineeID  uint `gorm:"not null;uniqueIndex:idx_attendance_trainee_training_date"`
	TrainingID uint `gorm:"not null;uniqueIndex:idx_attendance_trainee_training_date"`
	Date       Date `gorm:"type:date;not null;uniqueIndex:idx_attendance_trainee_training_date"`

	CheckInTime    time.Time `gorm:"not null"`
	Latitude       *float64
	Longitude      *float64
	DistanceMeters *float64
	WithinGeofence *bool
	QRToken        string `gorm:"not null"`
	Status         string `gorm:"not null"`
}

type AttendanceDAO struct {
	db *gorm.DB
}

func NewAttendanceDAO(db *gorm.DB) *AttendanceDAO {
	return &AttendanceDAO{
		db: db,
	}
}

func (d *AttendanceDAO) Insert(ctx context.Context, attendance Attendance) (Attendance, error) {
	result := d.db.WithContext(ctx).Create(&attendance)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "idx_attendance_trainee_training_date") {
			return Attendance{}, ErrDuplicateAttendance
		}

		return Attendance{}, result.Error
	}

	return attendance, nil
}

func (d *AttendanceDAO) FindByTraineeTrainingDate(ctx context.Context, traineeID, trainingID uint, date string) (Attendance, error) {
	var attendance Attendance

	result := d.db.WithContext(ctx).
		First(&attendance, "trainee_id = ? AND training_id = ? AND date = ?", traineeID, trainingID, date)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Attendance{}, ErrAttendanceNotFound
		}

		return Attendance{}, result.Error
	}

	return attendance, nil
}

// AttendanceFilter narrows reporting queries. Zero values are ignored.
type AttendanceFilter struct {
	TraineeID  uint
	TrainingID uint
	Date       string
}

func (d *AttendanceDAO) FindAll(ctx context.Context, filter AttendanceFilter) ([]Attendance, error) {
	query := d.db.WithContext(ctx).Model(&Attendance{})
	if filter.TraineeID != 0 {
		query = query.Where("trainee_id = ?", filter.TraineeID)
	}
	if filter.TrainingID != 0 {
		query = query.Where("training_id = ?", filter.TrainingID)
	}
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}

	var records []Attendance
	result := query.Order("check_in_time DESC").Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}

	return records, nil
}
