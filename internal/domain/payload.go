package domain

import (
	"encoding/json"
)

// DateLayout is the calendar date format used across QR payloads
// and attendance records.
const DateLayout = "2006-01-02"

// QRPayload is the ephemeral structure carried inside a QR code.
// Two shapes are valid: date-scoped (Date set, valid for a whole
// calendar day) and time-scoped (ExpiresAt set, valid for a short
// rolling window).
//
// Latitude, Longitude and GeofenceRadius are optional hints for a
// client-side pre-check only. The server re-derives them from the
// training record and never trusts them for admission.
type QRPayload struct {
	TrainingID uint   `json:"training_id"`
	Token      string `json:"token"`
	Date       string `json:"date,omitempty"`
	ExpiresAt  int64  `json:"expires_at,omitempty"`

	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	GeofenceRadius *uint    `json:"geofence_radius,omitempty"`
}

func (p QRPayload) DateScoped() bool {
	return p.Date != ""
}

// ParseQRPayload deserializes a scanned QR value. A malformed payload
// yields an invalid_format rejection; a payload missing its training
// id, token, or temporal claim yields incomplete_payload.
func ParseQRPayload(raw string) (QRPayload, *Rejection) {
	var payload QRPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return QRPayload{}, NewRejection(RejectionInvalidFormat, "the scanned code is not a valid attendance QR code")
	}

	if payload.TrainingID == 0 {
		return QRPayload{}, NewRejection(RejectionIncompletePayload, "QR code is missing training information")
	}
	if payload.Token == "" {
		return QRPayload{}, NewRejection(RejectionIncompletePayload, "QR code is missing its security token")
	}
	if payload.Date == "" && payload.ExpiresAt == 0 {
		return QRPayload{}, NewRejection(RejectionIncompletePayload, "QR code is missing date or expiry information")
	}

	return payload, nil
}

// Coordinate is a device location fix submitted alongside a scan.
type Coordinate struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters"`
}
