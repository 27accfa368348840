package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/repository/dao"
)

var ErrTrainingNotFound = dao.ErrTrainingNotFound

type TrainingDAO interface {
	Insert(ctx context.Context, training dao.Training) (dao.Training, error)
	FindByID(ctx context.Context, id uint) (dao.Training, error)
	FindAll(ctx context.Context) ([]dao.Training, error)
	UpdateToken(ctx context.Context, id uint, token string, issuedAt time.Time) error
}

type TrainingRepository struct {
	dao TrainingDAO
}

func NewTrainingRepository(dao TrainingDAO) *TrainingRepository {
	return &TrainingRepository{
		dao: dao,
	}
}

func (r *TrainingRepository) Create(ctx context.Context, training domain.Training) (domain.Training, error) {
	created, err := r.dao.Insert(ctx, dao.Training{
		Name:           training.Name,
		Venue:          training.Venue,
		Latitude:       training.Latitude,
		Longitude:      training.Longitude,
		GeofenceRadius: training.GeofenceRadius,
		StartDate:      training.StartDate,
		EndDate:        training.EndDate,
		Timezone:       training.Timezone,
	})
	if err != nil {
		return domain.Training{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return trainingDaoToDomain(created), nil
}

func (r *TrainingRepository) FindByID(ctx context.Context, id uint) (domain.Training, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Training{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return trainingDaoToDomain(found), nil
}

func (r *TrainingRepository) FindAll(ctx context.Context) ([]domain.Training, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	trainings := make([]domain.Training, 0, len(found))
	for _, t := range found {
		trainings = append(trainings, trainingDaoToDomain(t))
	}

	return trainings, nil
}

// UpdateToken persists a freshly issued token, invalidating whatever
// token was stored before.
func (r *TrainingRepository) UpdateToken(ctx context.Context, id uint, token string, issuedAt time.Time) error {
	if err := r.dao.UpdateToken(ctx, id, token, issuedAt); err != nil {
		return fmt.Errorf("r.dao.UpdateToken -> %w", err)
	}

	return nil
}

func trainingDaoToDomain(t dao.Training) domain.Training {
	training := domain.Training{
		ID:             t.ID,
		Name:           t.Name,
		Venue:          t.Venue,
		Latitude:       t.Latitude,
		Longitude:      t.Longitude,
		GeofenceRadius: t.GeofenceRadius,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		Timezone:       t.Timezone,
		TokenIssuedAt:  t.TokenIssuedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.QRToken != nil {
		training.QRToken = *t.QRToken
	}

	return training
}
