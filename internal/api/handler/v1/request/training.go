package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	errInvalidTimezone  = errors.New("timezone must be a valid IANA zone name")
	errInvalidDateOrder = errors.New("end_date must not be before start_date")
)

type CreateTrainingRequest struct {
	Name           string  `json:"name"`
	Venue          string  `json:"venue"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	GeofenceRadius uint    `json:"geofence_radius"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Timezone       string  `json:"timezone"`
}

func (req *CreateTrainingRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Venue, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&req.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&req.GeofenceRadius, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.StartDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&req.EndDate, validation.Required, validation.Date("2006-01-02")),
	)
	if err != nil {
		return err
	}

	if req.Timezone != "" {
		if _, err = time.LoadLocation(req.Timezone); err != nil {
			return errInvalidTimezone
		}
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	if end.Before(start) {
		return errInvalidDateOrder
	}

	return nil
}

type IssueTokenRequest struct {
	Policy string `json:"policy"`
}

func (req *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Policy, validation.Required, validation.In("daily", "interval")),
	)
}

type StopRotationRequest struct {
	SessionID string `json:"session_id"`
}

func (req *StopRotationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.SessionID, validation.Required),
	)
}
