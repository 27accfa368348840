package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/traintrack/checkin-api/internal/config"
	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/geo"
	"github.com/traintrack/checkin-api/internal/repository"
)

// Geofence enforcement modes. Strict rejects out-of-range scans,
// advisory records the distance but admits anyway, disabled skips the
// location check entirely and stores no distance.
const (
	GeofenceStrict   = "strict"
	GeofenceAdvisory = "advisory"
	GeofenceDisabled = "disabled"
)

type CheckInTrainingRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Training, error)
}

type CheckInEnrollmentRepository interface {
	FindActive(ctx context.Context, traineeID, trainingID uint) (domain.Enrollment, error)
}

type CheckInAttendanceRepository interface {
	Record(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error)
	FindByTraineeTrainingDate(ctx context.Context, traineeID, trainingID uint, date string) (domain.AttendanceRecord, error)
	Query(ctx context.Context, filter repository.AttendanceFilter) ([]domain.AttendanceRecord, error)
}

// CheckInService decides admission for scanned QR payloads. Checks run
// in a fixed order and short-circuit on the first failure, so every
// rejection carries the one reason that actually stopped the scan.
type CheckInService struct {
	trainings   CheckInTrainingRepository
	enrollments CheckInEnrollmentRepository
	attendance  CheckInAttendanceRepository
	enforcement string
	defaultTZ   string
	now         func() time.Time
}

func NewCheckInService(
	trainings CheckInTrainingRepository,
	enrollments CheckInEnrollmentRepository,
	attendance CheckInAttendanceRepository,
	conf *config.CheckInConfig,
) *CheckInService {
	enforcement := conf.GeofenceEnforcement
	if enforcement == "" {
		enforcement = GeofenceStrict
	}

	return &CheckInService{
		trainings:   trainings,
		enrollments: enrollments,
		attendance:  attendance,
		enforcement: enforcement,
		defaultTZ:   conf.DefaultTimezone,
		now:         time.Now,
	}
}

// CheckIn validates a scanned payload for the trainee and, on success,
// appends an attendance record. Rejections come back as
// *domain.Rejection; any other error is a store failure.
func (s *CheckInService) CheckIn(ctx context.Context, traineeID uint, rawPayload string, fix *domain.Coordinate) (domain.AttendanceRecord, error) {
	payload, rejection := domain.ParseQRPayload(rawPayload)
	if rejection != nil {
		return domain.AttendanceRecord{}, rejection
	}

	// The training row is fetched up front purely to learn the venue
	// timezone; its absence is surfaced only after the temporal check
	// so rejection reasons keep their fixed order.
	training, err := s.trainings.FindByID(ctx, payload.TrainingID)
	if err != nil && !errors.Is(err, repository.ErrTrainingNotFound) {
		return domain.AttendanceRecord{}, fmt.Errorf("s.trainings.FindByID -> %w", err)
	}
	trainingFound := err == nil

	loc := time.UTC
	if trainingFound {
		loc, err = training.Location(s.defaultTZ)
	} else if s.defaultTZ != "" {
		loc, err = time.LoadLocation(s.defaultTZ)
	}
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("time.LoadLocation -> %w", err)
	}

	now := s.now()
	today := now.In(loc).Format(domain.DateLayout)

	if payload.DateScoped() {
		if payload.Date != today {
			return domain.AttendanceRecord{}, domain.RejectWrongDay(today, payload.Date)
		}
	} else if now.After(time.Unix(payload.ExpiresAt, 0)) {
		return domain.AttendanceRecord{}, domain.NewRejection(domain.RejectionTokenExpired,
			"this QR code has expired, scan the code currently on display")
	}

	if !trainingFound {
		return domain.AttendanceRecord{}, domain.NewRejection(domain.RejectionTrainingNotFound,
			"training information not found, contact your administrator")
	}

	// Only the most recently persisted token is honored, which is what
	// defeats screenshots of earlier rotations.
	if training.QRToken == "" || training.QRToken != payload.Token {
		return domain.AttendanceRecord{}, domain.NewRejection(domain.RejectionTokenStale,
			"this QR code is no longer valid, scan the code currently on display")
	}

	if _, err = s.enrollments.FindActive(ctx, traineeID, training.ID); err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return domain.AttendanceRecord{}, domain.NewRejection(domain.RejectionNotEnrolled,
				"you are not enrolled in this training, contact your administrator")
		}

		return domain.AttendanceRecord{}, fmt.Errorf("s.enrollments.FindActive -> %w", err)
	}

	prior, err := s.attendance.FindByTraineeTrainingDate(ctx, traineeID, training.ID, today)
	if err == nil {
		return domain.AttendanceRecord{}, domain.RejectAlreadyMarked(prior.CheckInTime)
	}
	if !errors.Is(err, repository.ErrAttendanceNotFound) {
		return domain.AttendanceRecord{}, fmt.Errorf("s.attendance.FindByTraineeTrainingDate -> %w", err)
	}

	record := domain.AttendanceRecord{
		TraineeID:   traineeID,
		TrainingID:  training.ID,
		Date:        today,
		CheckInTime: now,
		QRToken:     payload.Token,
		Status:      domain.AttendanceStatusPresent,
	}

	if s.enforcement != GeofenceDisabled {
		if fix == nil {
			if s.enforcement == GeofenceStrict {
				return domain.AttendanceRecord{}, domain.NewRejection(domain.RejectionLocationUnavailable,
					"a location fix is required to mark attendance here")
			}
		} else {
			distance := geo.Distance(fix.Latitude, fix.Longitude, training.Latitude, training.Longitude)
			within := geo.WithinRadius(distance, float64(training.GeofenceRadius))

			if s.enforcement == GeofenceStrict && !within {
				return domain.AttendanceRecord{}, domain.RejectOutOfRange(distance, training.GeofenceRadius)
			}

			lat, lon := fix.Latitude, fix.Longitude
			record.Latitude = &lat
			record.Longitude = &lon
			record.DistanceMeters = &distance
			record.WithinGeofence = &within
		}
	}

	created, err := s.attendance.Record(ctx, record)
	if err != nil {
		// The unique constraint catches the race two concurrent scans
		// can win past the pre-check above.
		if errors.Is(err, repository.ErrDuplicateAttendance) {
			return domain.AttendanceRecord{}, domain.NewRejection(domain.RejectionDuplicateEntry,
				"attendance was already recorded for today")
		}

		return domain.AttendanceRecord{}, fmt.Errorf("s.attendance.Record -> %w", err)
	}

	return created, nil
}

// History lists recorded check-ins for reporting.
func (s *CheckInService) History(ctx context.Context, filter repository.AttendanceFilter) ([]domain.AttendanceRecord, error) {
	records, err := s.attendance.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.attendance.Query -> %w", err)
	}

	return records, nil
}
