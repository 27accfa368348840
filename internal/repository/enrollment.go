package repository

import (
	"context"
	"fmt"

	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/repository/dao"
)

var (
	ErrEnrollmentExists   = dao.ErrEnrollmentExists
	ErrEnrollmentNotFound = dao.ErrEnrollmentNotFound
)

type EnrollmentDAO interface {
	Insert(ctx context.Context, enrollment dao.Enrollment) (dao.Enrollment, error)
	FindActive(ctx context.Context, traineeID, trainingID uint) (dao.Enrollment, error)
	Deactivate(ctx context.Context, id uint) error
}

type EnrollmentRepository struct {
	dao EnrollmentDAO
}

func NewEnrollmentRepository(dao EnrollmentDAO) *EnrollmentRepository {
	return &EnrollmentRepository{
		dao: dao,
	}
}

func (r *EnrollmentRepository) Create(ctx context.Context, enrollment domain.Enrollment) (domain.Enrollment, error) {
	created, err := r.dao.Insert(ctx, dao.Enrollment{
		TraineeID:  enrollment.TraineeID,
		TrainingID: enrollment.TrainingID,
		Active:     true,
	})
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return enrollmentDaoToDomain(created), nil
}

func (r *EnrollmentRepository) FindActive(ctx context.Context, traineeID, trainingID uint) (domain.Enrollment, error) {
	found, err := r.dao.FindActive(ctx, traineeID, trainingID)
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("r.dao.FindActive -> %w", err)
	}

	return enrollmentDaoToDomain(found), nil
}

func (r *EnrollmentRepository) Deactivate(ctx context.Context, id uint) error {
	if err := r.dao.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Deactivate -> %w", err)
	}

	return nil
}

func enrollmentDaoToDomain(e dao.Enrollment) domain.Enrollment {
	return domain.Enrollment{
		ID:         e.ID,
		TraineeID:  e.TraineeID,
		TrainingID: e.TrainingID,
		Active:     e.Active,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
