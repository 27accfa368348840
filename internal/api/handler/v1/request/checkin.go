package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/traintrack/checkin-api/internal/domain"
)

// CheckInRequest carries the raw scanned QR value and, when the client
// acquired one, a location fix. Payload shape problems are judged by
// the validator itself so they surface as typed rejections, not 400s.
type CheckInRequest struct {
	Payload  string  `json:"payload"`
	Location *GeoFix `json:"location,omitempty"`
}

type GeoFix struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters"`
}

func (req *CheckInRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Payload, validation.Required),
	)
	if err != nil {
		return err
	}

	if req.Location != nil {
		return validation.ValidateStruct(
			req.Location,
			validation.Field(&req.Location.Latitude, validation.Min(-90.0), validation.Max(90.0)),
			validation.Field(&req.Location.Longitude, validation.Min(-180.0), validation.Max(180.0)),
			validation.Field(&req.Location.AccuracyMeters, validation.Min(0.0)),
		)
	}

	return nil
}

func (req *CheckInRequest) Coordinate() *domain.Coordinate {
	if req.Location == nil {
		return nil
	}

	return &domain.Coordinate{
		Latitude:       req.Location.Latitude,
		Longitude:      req.Location.Longitude,
		AccuracyMeters: req.Location.AccuracyMeters,
	}
}
