package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/traintrack/checkin-api/internal/api/handler/v1/request"
	"github.com/traintrack/checkin-api/internal/api/handler/v1/response"
	"github.com/traintrack/checkin-api/internal/api/middleware"
	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/repository"
	"github.com/traintrack/checkin-api/internal/service"
)

type CheckInService interface {
	CheckIn(ctx context.Context, traineeID uint, rawPayload string, fix *domain.Coordinate) (domain.AttendanceRecord, error)
	History(ctx context.Context, filter repository.AttendanceFilter) ([]domain.AttendanceRecord, error)
}

type CheckInTraineeService interface {
	GetByUserID(ctx context.Context, userID uint) (domain.Trainee, error)
}

type CheckInTrainingGetter interface {
	Get(ctx context.Context, id uint) (domain.Training, error)
}

type CheckInHandler struct {
	svc       CheckInService
	trainees  CheckInTraineeService
	trainings CheckInTrainingGetter
}

func NewCheckInHandler(svc CheckInService, trainees CheckInTraineeService, trainings CheckInTrainingGetter) *CheckInHandler {
	return &CheckInHandler{
		svc:       svc,
		trainees:  trainees,
		trainings: trainings,
	}
}

// HandleCheckIn godoc
// @Summary      Submit a scanned QR payload for attendance
// @Description  Validates the payload, enrollment, duplicate suppression and geofence, then records attendance. Rejections return 422 with a stable code.
// @Tags         check-ins
// @Produce      json
// @Param        request   body      request.CheckInRequest true "request body"
// @Success      201      {object}   response.CheckInResponse
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      422      {object}   domain.Rejection
// @Failure      500      {object}   response.Err
// @Router       /check-ins [post]
func (h *CheckInHandler) HandleCheckIn(ctx *gin.Context) {
	var req request.CheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	userID := ctx.GetUint(middleware.CtxKeyUserID)
	trainee, err := h.trainees.GetByUserID(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrTraineeNotFound) {
			response.RenderErr(ctx, response.ErrForbidden(
				errors.New("trainee profile not found, contact your administrator")))

			return
		}

		err = fmt.Errorf("v1.HandleCheckIn -> h.trainees.GetByUserID -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	record, err := h.svc.CheckIn(ctx.Request.Context(), trainee.ID, req.Payload, req.Coordinate())
	if err != nil {
		var rejection *domain.Rejection
		if errors.As(err, &rejection) {
			response.RenderRejection(ctx, rejection)

			return
		}

		err = fmt.Errorf("v1.HandleCheckIn -> h.svc.CheckIn -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	trainingName := ""
	if training, err := h.trainings.Get(ctx.Request.Context(), record.TrainingID); err == nil {
		trainingName = training.Name
	}

	ctx.JSON(http.StatusCreated, response.CheckInResponse{
		Message:        "attendance marked",
		TrainingID:     record.TrainingID,
		TrainingName:   trainingName,
		Date:           record.Date,
		CheckInTime:    record.CheckInTime,
		DistanceMeters: record.DistanceMeters,
		WithinGeofence: record.WithinGeofence,
	})
}

// HandleListAttendance godoc
// @Summary      List attendance records
// @Description  Trainees only ever see their own history; the trainee filter is an admin capability.
// @Tags         check-ins
// @Produce      json
// @Param        trainee_id   query     integer false "filter by trainee (admin only)"
// @Param        training_id  query     integer false "filter by training"
// @Param        date         query     string  false "filter by date (YYYY-MM-DD)"
// @Success      200      {array}    domain.AttendanceRecord
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /attendance [get]
func (h *CheckInHandler) HandleListAttendance(ctx *gin.Context) {
	filter := repository.AttendanceFilter{
		Date: ctx.Query("date"),
	}
	if v, err := strconv.ParseUint(ctx.Query("trainee_id"), 10, 64); err == nil {
		filter.TraineeID = uint(v)
	}
	if v, err := strconv.ParseUint(ctx.Query("training_id"), 10, 64); err == nil {
		filter.TrainingID = uint(v)
	}

	// Non-admin callers are pinned to their own records whatever the
	// query says.
	if ctx.GetString(middleware.CtxKeyUserRole) != domain.RoleAdmin {
		trainee, err := h.trainees.GetByUserID(ctx.Request.Context(), ctx.GetUint(middleware.CtxKeyUserID))
		if err != nil {
			if errors.Is(err, service.ErrTraineeNotFound) {
				response.RenderErr(ctx, response.ErrForbidden(
					errors.New("trainee profile not found, contact your administrator")))

				return
			}

			err = fmt.Errorf("v1.HandleListAttendance -> h.trainees.GetByUserID -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))

			return
		}

		filter.TraineeID = trainee.ID
	}

	records, err := h.svc.History(ctx.Request.Context(), filter)
	if err != nil {
		err = fmt.Errorf("v1.HandleListAttendance -> h.svc.History -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, records)
}
