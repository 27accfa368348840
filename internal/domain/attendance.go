package domain

import "time"

const AttendanceStatusPresent = "present"

// AttendanceRecord is one successful check-in. Records are append-only
// and unique per (trainee, training, date), where the date is local to
// the training venue's timezone.
type AttendanceRecord struct {
	ID             uint      `json:"id"`
	TraineeID      uint      `json:"trainee_id"`
	TrainingID     uint      `json:"training_id"`
	Date           string    `json:"date"`
	CheckInTime    time.Time `json:"check_in_time"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
	WithinGeofence *bool     `json:"within_geofence,omitempty"`
	QRToken        string    `json:"-"`
	Status         string    `json:"status"`
}
