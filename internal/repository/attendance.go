package repository

import (
	"context"
	"fmt"

	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/repository/dao"
)

var (
	ErrDuplicateAttendance = dao.ErrDuplicateAttendance
	ErrAttendanceNotFound  = dao.ErrAttendanceNotFound
)

// AttendanceFilter narrows ledger queries; zero values are ignored.
type AttendanceFilter struct {
	TraineeID  uint
	TrainingID uint
	Date       string
}

type AttendanceDAO interface {
	Insert(ctx context.Context, attendance dao.Attendance) (dao.Attendance, error)
	FindByTraineeTrainingDate(ctx context.Context, traineeID, trainingID uint, date string) (dao.Attendance, error)
	FindAll(ctx context.Context, filter dao.AttendanceFilter) ([]dao.Attendance, error)
}

// AttendanceRepository is the append-only attendance ledger.
type AttendanceRepository struct {
	dao AttendanceDAO
}

func NewAttendanceRepository(dao AttendanceDAO) *AttendanceRepository {
	return &AttendanceRepository{
		dao: dao,
	}
}

// Record appends one check-in. The store's uniqueness constraint on
// (trainee, training, date) is what closes the race between two
// concurrent scans; a violation surfaces as ErrDuplicateAttendance.
func (r *AttendanceRepository) Record(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error) {
	created, err := r.dao.Insert(ctx, dao.Attendance{
		TraineeID:      record.TraineeID,
		TrainingID:     record.TrainingID,
		Date:           dao.Date(record.Date),
		CheckInTime:    record.CheckInTime,
		Latitude:       record.Latitude,
		Longitude:      record.Longitude,
		DistanceMeters: record.DistanceMeters,
		WithinGeofence: record.WithinGeofence,
		QRToken:        record.QRToken,
		Status:         record.Status,
	})
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return attendanceDaoToDomain(created), nil
}

func (r *AttendanceRepository) FindByTraineeTrainingDate(ctx context.Context, traineeID, trainingID uint, date string) (domain.AttendanceRecord, error) {
	found, err := r.dao.FindByTraineeTrainingDate(ctx, traineeID, trainingID, date)
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("r.dao.FindByTraineeTrainingDate -> %w", err)
	}

	return attendanceDaoToDomain(found), nil
}

func (r *AttendanceRepository) Query(ctx context.Context, filter AttendanceFilter) ([]domain.AttendanceRecord, error) {
	found, err := r.dao.FindAll(ctx, dao.AttendanceFilter{
		TraineeID:  filter.TraineeID,
		TrainingID: filter.TrainingID,
		Date:       filter.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	records := make([]domain.AttendanceRecord, 0, len(found))
	for _, a := range found {
		records = append(records, attendanceDaoToDomain(a))
	}

	return records, nil
}

func attendanceDaoToDomain(a dao.Attendance) domain.AttendanceRecord {
	return domain.AttendanceRecord{
		ID:             a.ID,
		TraineeID:      a.TraineeID,
		TrainingID:     a.TrainingID,
		Date:           string(a.Date),
		CheckInTime:    a.CheckInTime,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		DistanceMeters: a.DistanceMeters,
		WithinGeofence: a.WithinGeofence,
		QRToken:        a.QRToken,
		Status:         a.Status,
	}
}
