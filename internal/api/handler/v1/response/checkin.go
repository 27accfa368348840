package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/traintrack/checkin-api/internal/domain"
)

type CheckInResponse struct {
	Message        string    `json:"message"`
	TrainingID     uint      `json:"training_id"`
	TrainingName   string    `json:"training_name"`
	Date           string    `json:"date"`
	CheckInTime    time.Time `json:"check_in_time"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
	WithinGeofence *bool     `json:"within_geofence,omitempty"`
}

// RenderRejection surfaces a typed check-in refusal. Every rejection
// reaches the caller verbatim with its detail fields; 422 keeps these
// distinct from malformed requests (400) and server faults (500).
func RenderRejection(ctx *gin.Context, rejection *domain.Rejection) {
	ctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, rejection)
}
