package repository

import (
	"context"
	"fmt"

	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/repository/dao"
)

var ErrTraineeNotFound = dao.ErrTraineeNotFound

type TraineeDAO interface {
	Insert(ctx context.Context, user dao.User, trainee dao.Trainee) (dao.Trainee, error)
	FindByID(ctx context.Context, id uint) (dao.Trainee, error)
	FindByUserID(ctx context.Context, userID uint) (dao.Trainee, error)
}

type TraineeRepository struct {
	dao TraineeDAO
}

func NewTraineeRepository(dao TraineeDAO) *TraineeRepository {
	return &TraineeRepository{
		dao: dao,
	}
}

// Create registers a trainee together with their login user.
func (r *TraineeRepository) Create(ctx context.Context, user domain.User, trainee domain.Trainee) (domain.Trainee, error) {
	daoUser := dao.User{
		Email:    user.Email,
		Password: user.Password,
		Name:     user.Name,
		Role:     domain.RoleTrainee,
	}
	daoTrainee := dao.Trainee{
		Name:            trainee.Name,
		Phone:           trainee.Phone,
		PostingLocation: trainee.PostingLocation,
	}

	created, err := r.dao.Insert(ctx, daoUser, daoTrainee)
	if err != nil {
		return domain.Trainee{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return traineeDaoToDomain(created), nil
}

func (r *TraineeRepository) FindByID(ctx context.Context, id uint) (domain.Trainee, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Trainee{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return traineeDaoToDomain(found), nil
}

func (r *TraineeRepository) FindByUserID(ctx context.Context, userID uint) (domain.Trainee, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Trainee{}, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return traineeDaoToDomain(found), nil
}

func traineeDaoToDomain(t dao.Trainee) domain.Trainee {
	return domain.Trainee{
		ID:              t.ID,
		UserID:          t.UserID,
		Name:            t.Name,
		Phone:           t.Phone,
		PostingLocation: t.PostingLocation,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
