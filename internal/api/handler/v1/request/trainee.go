package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type CreateTraineeRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	PostingLocation string `json:"posting_location"`
}

func (req *CreateTraineeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.Length(8, 0)),
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Phone, validation.Length(0, 20)),
	)
}

type CreateEnrollmentRequest struct {
	TraineeID  uint `json:"trainee_id"`
	TrainingID uint `json:"training_id"`
}

func (req *CreateEnrollmentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TraineeID, validation.Required),
		validation.Field(&req.TrainingID, validation.Required),
	)
}
