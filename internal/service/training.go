package service

import (
	"context"
	"fmt"
	"time"

	"github.com/traintrack/checkin-api/internal/domain"
)

type TrainingRepository interface {
	Create(ctx context.Context, training domain.Training) (domain.Training, error)
	FindByID(ctx context.Context, id uint) (domain.Training, error)
	FindAll(ctx context.Context) ([]domain.Training, error)
	UpdateToken(ctx context.Context, id uint, token string, issuedAt time.Time) error
}

type TrainingService struct {
	repo TrainingRepository
}

func NewTrainingService(repo TrainingRepository) *TrainingService {
	return &TrainingService{
		repo: repo,
	}
}

func (s *TrainingService) Create(ctx context.Context, training domain.Training) (domain.Training, error) {
	created, err := s.repo.Create(ctx, training)
	if err != nil {
		return domain.Training{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *TrainingService) Get(ctx context.Context, id uint) (domain.Training, error) {
	training, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Training{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return training, nil
}

func (s *TrainingService) List(ctx context.Context) ([]domain.Training, error) {
	trainings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return trainings, nil
}
