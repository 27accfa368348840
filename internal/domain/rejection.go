package domain

import (
	"fmt"
	"time"
)

type RejectionCode string

const (
	RejectionInvalidFormat            RejectionCode = "invalid_format"
	RejectionIncompletePayload        RejectionCode = "incomplete_payload"
	RejectionWrongDay                 RejectionCode = "wrong_day"
	RejectionTokenExpired             RejectionCode = "token_expired"
	RejectionTrainingNotFound         RejectionCode = "training_not_found"
	RejectionTokenStale               RejectionCode = "token_stale"
	RejectionNotEnrolled              RejectionCode = "not_enrolled"
	RejectionAlreadyMarked            RejectionCode = "already_marked"
	RejectionOutOfRange               RejectionCode = "out_of_range"
	RejectionDuplicateEntry           RejectionCode = "duplicate_entry"
	RejectionLocationUnavailable      RejectionCode = "location_unavailable"
	RejectionLocationPermissionDenied RejectionCode = "location_permission_denied"
	RejectionLocationTimeout          RejectionCode = "location_timeout"
)

// Rejection is a terminal, typed refusal of a single scan attempt.
// It carries enough detail for the caller to instruct the user precisely,
// never a generic failure.
type Rejection struct {
	Code    RejectionCode `json:"code"`
	Message string        `json:"message"`

	ExpectedDate   string     `json:"expected_date,omitempty"`
	ScannedDate    string     `json:"scanned_date,omitempty"`
	PriorCheckIn   *time.Time `json:"prior_check_in,omitempty"`
	DistanceMeters *float64   `json:"distance_meters,omitempty"`
	AllowedRadius  *uint      `json:"allowed_radius,omitempty"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("check-in rejected (%v): %v", r.Code, r.Message)
}

func NewRejection(code RejectionCode, message string) *Rejection {
	return &Rejection{
		Code:    code,
		Message: message,
	}
}

func RejectWrongDay(expected, scanned string) *Rejection {
	return &Rejection{
		Code:         RejectionWrongDay,
		Message:      fmt.Sprintf("this QR code is for %v, today is %v", scanned, expected),
		ExpectedDate: expected,
		ScannedDate:  scanned,
	}
}

func RejectAlreadyMarked(priorCheckIn time.Time) *Rejection {
	return &Rejection{
		Code:         RejectionAlreadyMarked,
		Message:      fmt.Sprintf("attendance already marked today at %v", priorCheckIn.Format(time.Kitchen)),
		PriorCheckIn: &priorCheckIn,
	}
}

func RejectOutOfRange(distanceMeters float64, allowedRadius uint) *Rejection {
	return &Rejection{
		Code: RejectionOutOfRange,
		Message: fmt.Sprintf("you are %.0fm away from the training location, you must be within %vm",
			distanceMeters, allowedRadius),
		DistanceMeters: &distanceMeters,
		AllowedRadius:  &allowedRadius,
	}
}
