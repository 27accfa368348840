package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/repository"
)

var ErrTraineeNotFound = repository.ErrTraineeNotFound

type TraineeRepository interface {
	Create(ctx context.Context, user domain.User, trainee domain.Trainee) (domain.Trainee, error)
	FindByID(ctx context.Context, id uint) (domain.Trainee, error)
	FindByUserID(ctx context.Context, userID uint) (domain.Trainee, error)
}

type TraineeService struct {
	repo TraineeRepository
}

func NewTraineeService(repo TraineeRepository) *TraineeService {
	return &TraineeService{
		repo: repo,
	}
}

// Create registers a trainee and their login in one step. Only
// administrators call this; trainees never self-register.
func (s *TraineeService) Create(ctx context.Context, user domain.User, trainee domain.Trainee) (domain.Trainee, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Trainee{}, err
	}
	user.Password = string(hash)
	user.Role = domain.RoleTrainee

	created, err := s.repo.Create(ctx, user, trainee)
	if err != nil {
		return domain.Trainee{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *TraineeService) Get(ctx context.Context, id uint) (domain.Trainee, error) {
	trainee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Trainee{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return trainee, nil
}

func (s *TraineeService) GetByUserID(ctx context.Context, userID uint) (domain.Trainee, error) {
	trainee, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Trainee{}, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return trainee, nil
}
