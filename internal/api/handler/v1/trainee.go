package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/traintrack/checkin-api/internal/api/handler/v1/request"
	"github.com/traintrack/checkin-api/internal/api/handler/v1/response"
	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/service"
)

type TraineeService interface {
	Create(ctx context.Context, user domain.User, trainee domain.Trainee) (domain.Trainee, error)
	Get(ctx context.Context, id uint) (domain.Trainee, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, traineeID, trainingID uint) (domain.Enrollment, error)
	Revoke(ctx context.Context, id uint) error
}

type TraineeHandler struct {
	svc         TraineeService
	enrollments EnrollmentService
}

func NewTraineeHandler(svc TraineeService, enrollments EnrollmentService) *TraineeHandler {
	return &TraineeHandler{
		svc:         svc,
		enrollments: enrollments,
	}
}

// HandleCreateTrainee godoc
// @Summary      Register a trainee and their login
// @Tags         trainees
// @Produce      json
// @Param        request   body      request.CreateTraineeRequest true "request body"
// @Success      201      {object}   domain.Trainee
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /trainees [post]
func (h *TraineeHandler) HandleCreateTrainee(ctx *gin.Context) {
	var req request.CreateTraineeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	trainee, err := h.svc.Create(ctx.Request.Context(),
		domain.User{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
		},
		domain.Trainee{
			Name:            req.Name,
			Phone:           req.Phone,
			PostingLocation: req.PostingLocation,
		})
	if err != nil {
		if errors.Is(err, service.ErrUserEmailExists) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrUserEmailExists))

			return
		}

		err = fmt.Errorf("v1.HandleCreateTrainee -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, trainee)
}

// HandleGetTrainee godoc
// @Summary      Get a trainee
// @Tags         trainees
// @Produce      json
// @Param        traineeID   path      integer true "trainee ID"
// @Success      200      {object}   domain.Trainee
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /trainees/{traineeID} [get]
func (h *TraineeHandler) HandleGetTrainee(ctx *gin.Context) {
	traineeID, ok := parseIDParam(ctx, "traineeID")
	if !ok {
		return
	}

	trainee, err := h.svc.Get(ctx.Request.Context(), traineeID)
	if err != nil {
		if errors.Is(err, service.ErrTraineeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrTraineeNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetTrainee -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, trainee)
}

// HandleCreateEnrollment godoc
// @Summary      Enroll a trainee in a training
// @Tags         enrollments
// @Produce      json
// @Param        request   body      request.CreateEnrollmentRequest true "request body"
// @Success      201      {object}   domain.Enrollment
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /enrollments [post]
func (h *TraineeHandler) HandleCreateEnrollment(ctx *gin.Context) {
	var req request.CreateEnrollmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	enrollment, err := h.enrollments.Enroll(ctx.Request.Context(), req.TraineeID, req.TrainingID)
	if err != nil {
		if errors.Is(err, service.ErrEnrollmentExists) {
			response.RenderErr(ctx, &response.Err{
				StatusCode: http.StatusConflict,
				ErrorMsg:   service.ErrEnrollmentExists.Error(),
			})

			return
		}

		err = fmt.Errorf("v1.HandleCreateEnrollment -> h.enrollments.Enroll -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, enrollment)
}

// HandleRevokeEnrollment godoc
// @Summary      Revoke an enrollment
// @Description  Deactivates the enrollment; the row is kept for audit.
// @Tags         enrollments
// @Produce      json
// @Param        enrollmentID   path      integer true "enrollment ID"
// @Success      204
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /enrollments/{enrollmentID} [delete]
func (h *TraineeHandler) HandleRevokeEnrollment(ctx *gin.Context) {
	enrollmentID, ok := parseIDParam(ctx, "enrollmentID")
	if !ok {
		return
	}

	if err := h.enrollments.Revoke(ctx.Request.Context(), enrollmentID); err != nil {
		if errors.Is(err, service.ErrEnrollmentNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrEnrollmentNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleRevokeEnrollment -> h.enrollments.Revoke -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}
