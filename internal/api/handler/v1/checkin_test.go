package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traintrack/checkin-api/internal/api/middleware"
	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/repository"
	"github.com/traintrack/checkin-api/internal/service"
)

type stubCheckInService struct {
	record  domain.AttendanceRecord
	err     error
	history []domain.AttendanceRecord

	gotTraineeID uint
	gotFilter    repository.AttendanceFilter
}

func (s *stubCheckInService) CheckIn(_ context.Context, traineeID uint, _ string, _ *domain.Coordinate) (domain.AttendanceRecord, error) {
	s.gotTraineeID = traineeID

	return s.record, s.err
}

func (s *stubCheckInService) History(_ context.Context, filter repository.AttendanceFilter) ([]domain.AttendanceRecord, error) {
	s.gotFilter = filter

	return s.history, nil
}

type stubTraineeLookup struct {
	trainee domain.Trainee
	err     error
}

func (s *stubTraineeLookup) GetByUserID(context.Context, uint) (domain.Trainee, error) {
	return s.trainee, s.err
}

type stubTrainingLookup struct {
	training domain.Training
	err      error
}

func (s *stubTrainingLookup) Get(context.Context, uint) (domain.Training, error) {
	return s.training, s.err
}

func newCheckInTestRouter(handler *CheckInHandler, userID uint, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	injectUser := func(ctx *gin.Context) {
		ctx.Set(middleware.CtxKeyUserID, userID)
		ctx.Set(middleware.CtxKeyUserRole, role)
		ctx.Next()
	}
	router.POST("/api/v1/check-ins", injectUser, handler.HandleCheckIn)
	router.GET("/api/v1/attendance", injectUser, handler.HandleListAttendance)

	return router
}

func TestHandleCheckIn(t *testing.T) {
	validBody := `{"payload":"{\"training_id\":1,\"token\":\"tok\",\"date\":\"2026-09-01\"}",` +
		`"location":{"latitude":0.001,"longitude":0,"accuracy_meters":20}}`

	t.Run("accepted scan", func(t *testing.T) {
		distance := 111.2
		within := true
		svc := &stubCheckInService{record: domain.AttendanceRecord{
			TraineeID:      7,
			TrainingID:     1,
			Date:           "2026-09-01",
			CheckInTime:    time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
			DistanceMeters: &distance,
			WithinGeofence: &within,
			Status:         domain.AttendanceStatusPresent,
		}}
		handler := NewCheckInHandler(svc,
			&stubTraineeLookup{trainee: domain.Trainee{ID: 7}},
			&stubTrainingLookup{training: domain.Training{ID: 1, Name: "Harvest Logistics"}})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/check-ins", strings.NewReader(validBody))
		newCheckInTestRouter(handler, 42, domain.RoleTrainee).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, uint(7), svc.gotTraineeID, "the trainee is resolved from the authenticated user")

		var got map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "attendance marked", got["message"])
		assert.Equal(t, "Harvest Logistics", got["training_name"])
	})

	t.Run("rejection renders 422 with the stable code", func(t *testing.T) {
		svc := &stubCheckInService{err: domain.RejectOutOfRange(222.4, 150)}
		handler := NewCheckInHandler(svc,
			&stubTraineeLookup{trainee: domain.Trainee{ID: 7}},
			&stubTrainingLookup{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/check-ins", strings.NewReader(validBody))
		newCheckInTestRouter(handler, 42, domain.RoleTrainee).ServeHTTP(w, req)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var got domain.Rejection
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, domain.RejectionOutOfRange, got.Code)
		require.NotNil(t, got.DistanceMeters)
		assert.InDelta(t, 222.4, *got.DistanceMeters, 0.01)
	})

	t.Run("missing payload is a 400, not a rejection", func(t *testing.T) {
		handler := NewCheckInHandler(&stubCheckInService{},
			&stubTraineeLookup{trainee: domain.Trainee{ID: 7}},
			&stubTrainingLookup{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/check-ins", strings.NewReader(`{}`))
		newCheckInTestRouter(handler, 42, domain.RoleTrainee).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("user without a trainee profile", func(t *testing.T) {
		handler := NewCheckInHandler(&stubCheckInService{},
			&stubTraineeLookup{err: service.ErrTraineeNotFound},
			&stubTrainingLookup{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/check-ins", strings.NewReader(validBody))
		newCheckInTestRouter(handler, 42, domain.RoleTrainee).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandleListAttendance(t *testing.T) {
	t.Run("admins may filter across trainees", func(t *testing.T) {
		svc := &stubCheckInService{history: []domain.AttendanceRecord{
			{ID: 1, TraineeID: 99, TrainingID: 1, Date: "2026-09-01"},
		}}
		handler := NewCheckInHandler(svc,
			&stubTraineeLookup{err: service.ErrTraineeNotFound},
			&stubTrainingLookup{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance?trainee_id=99&date=2026-09-01", nil)
		newCheckInTestRouter(handler, 42, domain.RoleAdmin).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(99), svc.gotFilter.TraineeID)
		assert.Equal(t, "2026-09-01", svc.gotFilter.Date)

		var got []domain.AttendanceRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})

	t.Run("trainees are pinned to their own records whatever the query says", func(t *testing.T) {
		svc := &stubCheckInService{}
		handler := NewCheckInHandler(svc,
			&stubTraineeLookup{trainee: domain.Trainee{ID: 7}},
			&stubTrainingLookup{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance?trainee_id=99", nil)
		newCheckInTestRouter(handler, 42, domain.RoleTrainee).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(7), svc.gotFilter.TraineeID, "the queried trainee_id is overridden")
	})

	t.Run("trainee caller without a profile", func(t *testing.T) {
		handler := NewCheckInHandler(&stubCheckInService{},
			&stubTraineeLookup{err: service.ErrTraineeNotFound},
			&stubTrainingLookup{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance", nil)
		newCheckInTestRouter(handler, 42, domain.RoleTrainee).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
