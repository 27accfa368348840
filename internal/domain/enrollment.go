package domain

import "time"

// Enrollment links a trainee to a training. At most one row exists per
// (trainee, training) pair; revoking access deactivates the row rather
// than deleting it.
type Enrollment struct {
	ID         uint      `json:"id"`
	TraineeID  uint      `json:"trainee_id"`
	TrainingID uint      `json:"training_id"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
