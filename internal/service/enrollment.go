package service

import (
	"context"
	"fmt"

	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/repository"
)

var (
	ErrEnrollmentExists   = repository.ErrEnrollmentExists
	ErrEnrollmentNotFound = repository.ErrEnrollmentNotFound
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment domain.Enrollment) (domain.Enrollment, error)
	Deactivate(ctx context.Context, id uint) error
}

type EnrollmentService struct {
	repo EnrollmentRepository
}

func NewEnrollmentService(repo EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{
		repo: repo,
	}
}

func (s *EnrollmentService) Enroll(ctx context.Context, traineeID, trainingID uint) (domain.Enrollment, error) {
	created, err := s.repo.Create(ctx, domain.Enrollment{
		TraineeID:  traineeID,
		TrainingID: trainingID,
	})
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Revoke deactivates an enrollment; the row itself stays for audit.
func (s *EnrollmentService) Revoke(ctx context.Context, id uint) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Deactivate -> %w", err)
	}

	return nil
}
