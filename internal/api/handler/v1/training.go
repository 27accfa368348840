package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/traintrack/checkin-api/internal/api/handler/v1/request"
	"github.com/traintrack/checkin-api/internal/api/handler/v1/response"
	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/service"
)

const qrImageSize = 380

type TrainingService interface {
	Create(ctx context.Context, training domain.Training) (domain.Training, error)
	Get(ctx context.Context, id uint) (domain.Training, error)
	List(ctx context.Context) ([]domain.Training, error)
}

type TokenService interface {
	IssueDaily(ctx context.Context, trainingID uint) (domain.QRPayload, error)
	IssueInterval(ctx context.Context, trainingID uint) (domain.QRPayload, error)
	CurrentPayload(ctx context.Context, trainingID uint) (domain.QRPayload, error)
	StartRotation(ctx context.Context, trainingID uint) (uuid.UUID, error)
	StopRotation(trainingID uint, sessionID uuid.UUID) error
}

type TrainingHandler struct {
	svc    TrainingService
	tokens TokenService
}

func NewTrainingHandler(svc TrainingService, tokens TokenService) *TrainingHandler {
	return &TrainingHandler{
		svc:    svc,
		tokens: tokens,
	}
}

// HandleCreateTraining godoc
// @Summary      Create a training session
// @Tags         trainings
// @Produce      json
// @Param        request   body      request.CreateTrainingRequest true "request body"
// @Success      201      {object}   domain.Training
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /trainings [post]
func (h *TrainingHandler) HandleCreateTraining(ctx *gin.Context) {
	var req request.CreateTrainingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	startDate, _ := time.Parse(domain.DateLayout, req.StartDate)
	endDate, _ := time.Parse(domain.DateLayout, req.EndDate)

	training, err := h.svc.Create(ctx.Request.Context(), domain.Training{
		Name:           req.Name,
		Venue:          req.Venue,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		GeofenceRadius: req.GeofenceRadius,
		StartDate:      startDate,
		EndDate:        endDate,
		Timezone:       req.Timezone,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateTraining -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, training)
}

// HandleGetTrainings godoc
// @Summary      List training sessions
// @Tags         trainings
// @Produce      json
// @Success      200      {array}    domain.Training
// @Failure      500      {object}   response.Err
// @Router       /trainings [get]
func (h *TrainingHandler) HandleGetTrainings(ctx *gin.Context) {
	trainings, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTrainings -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, trainings)
}

// HandleGetTraining godoc
// @Summary      Get a training session
// @Tags         trainings
// @Produce      json
// @Param        trainingID   path      integer true "training ID"
// @Success      200      {object}   domain.Training
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /trainings/{trainingID} [get]
func (h *TrainingHandler) HandleGetTraining(ctx *gin.Context) {
	trainingID, ok := parseIDParam(ctx, "trainingID")
	if !ok {
		return
	}

	training, err := h.svc.Get(ctx.Request.Context(), trainingID)
	if err != nil {
		if errors.Is(err, service.ErrTrainingNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrTrainingNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetTraining -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, training)
}

// HandleIssueToken godoc
// @Summary      Rotate a training's admission token
// @Description  Issues a fresh token under the daily or interval policy and returns the QR payload to display.
// @Tags         trainings
// @Produce      json
// @Param        trainingID   path      integer true "training ID"
// @Param        request   body      request.IssueTokenRequest true "request body"
// @Success      200      {object}   domain.QRPayload
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /trainings/{trainingID}/token [post]
func (h *TrainingHandler) HandleIssueToken(ctx *gin.Context) {
	trainingID, ok := parseIDParam(ctx, "trainingID")
	if !ok {
		return
	}

	var req request.IssueTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var payload domain.QRPayload
	var err error
	if req.Policy == "interval" {
		payload, err = h.tokens.IssueInterval(ctx.Request.Context(), trainingID)
	} else {
		payload, err = h.tokens.IssueDaily(ctx.Request.Context(), trainingID)
	}
	if err != nil {
		if errors.Is(err, service.ErrTrainingNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrTrainingNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleIssueToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, payload)
}

// HandleGetQR godoc
// @Summary      Get the current QR payload
// @Tags         trainings
// @Produce      json
// @Param        trainingID   path      integer true "training ID"
// @Success      200      {object}   domain.QRPayload
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /trainings/{trainingID}/qr [get]
func (h *TrainingHandler) HandleGetQR(ctx *gin.Context) {
	payload, ok := h.currentPayload(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

// HandleGetQRImage godoc
// @Summary      Get the current QR code as a PNG
// @Tags         trainings
// @Produce      png
// @Param        trainingID   path      integer true "training ID"
// @Success      200
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /trainings/{trainingID}/qr.png [get]
func (h *TrainingHandler) HandleGetQRImage(ctx *gin.Context) {
	payload, ok := h.currentPayload(ctx)
	if !ok {
		return
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetQRImage -> json.Marshal -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	png, err := qrcode.Encode(string(encoded), qrcode.High, qrImageSize)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetQRImage -> qrcode.Encode -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Data(http.StatusOK, "image/png", png)
}

// HandleStartRotation godoc
// @Summary      Start interval token rotation for a display session
// @Tags         trainings
// @Produce      json
// @Param        trainingID   path      integer true "training ID"
// @Success      201      {object}   map[string]string
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /trainings/{trainingID}/rotation/start [post]
func (h *TrainingHandler) HandleStartRotation(ctx *gin.Context) {
	trainingID, ok := parseIDParam(ctx, "trainingID")
	if !ok {
		return
	}

	sessionID, err := h.tokens.StartRotation(ctx.Request.Context(), trainingID)
	if err != nil {
		if errors.Is(err, service.ErrTrainingNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrTrainingNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleStartRotation -> h.tokens.StartRotation -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"session_id": sessionID.String()})
}

// HandleStopRotation godoc
// @Summary      Stop an interval rotation display session
// @Tags         trainings
// @Produce      json
// @Param        trainingID   path      integer true "training ID"
// @Param        request   body      request.StopRotationRequest true "request body"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Router       /trainings/{trainingID}/rotation/stop [post]
func (h *TrainingHandler) HandleStopRotation(ctx *gin.Context) {
	trainingID, ok := parseIDParam(ctx, "trainingID")
	if !ok {
		return
	}

	var req request.StopRotationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = h.tokens.StopRotation(trainingID, sessionID); err != nil {
		response.RenderErr(ctx, response.ErrNotFound(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *TrainingHandler) currentPayload(ctx *gin.Context) (domain.QRPayload, bool) {
	trainingID, ok := parseIDParam(ctx, "trainingID")
	if !ok {
		return domain.QRPayload{}, false
	}

	payload, err := h.tokens.CurrentPayload(ctx.Request.Context(), trainingID)
	if err != nil {
		if errors.Is(err, service.ErrTrainingNotFound) || errors.Is(err, service.ErrNoActiveToken) {
			response.RenderErr(ctx, response.ErrNotFound(err))

			return domain.QRPayload{}, false
		}

		err = fmt.Errorf("v1.currentPayload -> h.tokens.CurrentPayload -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return domain.QRPayload{}, false
	}

	return payload, true
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %v %q", name, raw)))

		return 0, false
	}

	return uint(id), true
}
