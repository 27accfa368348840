package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traintrack/checkin-api/internal/config"
	"github.com/traintrack/checkin-api/internal/domain"
)

type fakeTokenTrainingRepo struct {
	mu        sync.Mutex
	trainings map[uint]domain.Training
}

func newFakeTokenTrainingRepo(trainings ...domain.Training) *fakeTokenTrainingRepo {
	repo := &fakeTokenTrainingRepo{trainings: make(map[uint]domain.Training)}
	for _, t := range trainings {
		repo.trainings[t.ID] = t
	}

	return repo
}

func (r *fakeTokenTrainingRepo) FindByID(_ context.Context, id uint) (domain.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	training, ok := r.trainings[id]
	if !ok {
		return domain.Training{}, ErrTrainingNotFound
	}

	return training, nil
}

func (r *fakeTokenTrainingRepo) UpdateToken(_ context.Context, id uint, token string, issuedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	training, ok := r.trainings[id]
	if !ok {
		return ErrTrainingNotFound
	}

	training.QRToken = token
	training.TokenIssuedAt = &issuedAt
	r.trainings[id] = training

	return nil
}

func (r *fakeTokenTrainingRepo) currentToken(id uint) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.trainings[id].QRToken
}

func tokenTestTraining() domain.Training {
	return domain.Training{
		ID:             1,
		Name:           "Field Safety Induction",
		Latitude:       9.03,
		Longitude:      38.74,
		GeofenceRadius: 150,
		Timezone:       "Africa/Addis_Ababa",
	}
}

func newTokenServiceForTest(repo TokenTrainingRepository, interval time.Duration) *TokenService {
	return NewTokenService(repo, &config.CheckInConfig{
		RotationInterval: interval,
		DefaultTimezone:  "UTC",
	})
}

func TestTokenService_Issue(t *testing.T) {
	t.Run("persists a fresh token on the training", func(t *testing.T) {
		repo := newFakeTokenTrainingRepo(tokenTestTraining())
		svc := newTokenServiceForTest(repo, time.Minute)

		tok, issuedAt, err := svc.Issue(context.Background(), 1)

		require.NoError(t, err)
		assert.NotEmpty(t, tok)
		assert.False(t, issuedAt.IsZero())
		assert.Equal(t, tok, repo.currentToken(1))
	})

	t.Run("a second issuance invalidates the first token", func(t *testing.T) {
		repo := newFakeTokenTrainingRepo(tokenTestTraining())
		svc := newTokenServiceForTest(repo, time.Minute)

		first, _, err := svc.Issue(context.Background(), 1)
		require.NoError(t, err)
		second, _, err := svc.Issue(context.Background(), 1)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.Equal(t, second, repo.currentToken(1))
	})

	t.Run("unknown training", func(t *testing.T) {
		repo := newFakeTokenTrainingRepo()
		svc := newTokenServiceForTest(repo, time.Minute)

		_, _, err := svc.Issue(context.Background(), 42)

		assert.ErrorIs(t, err, ErrTrainingNotFound)
	})
}

func TestTokenService_IssueDaily(t *testing.T) {
	repo := newFakeTokenTrainingRepo(tokenTestTraining())
	svc := newTokenServiceForTest(repo, time.Minute)

	// 23:30 UTC is already the next day in Addis Ababa (UTC+3).
	svc.now = func() time.Time {
		return time.Date(2026, 9, 1, 23, 30, 0, 0, time.UTC)
	}

	payload, err := svc.IssueDaily(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, uint(1), payload.TrainingID)
	assert.Equal(t, "2026-09-02", payload.Date, "the date is local to the venue")
	assert.Zero(t, payload.ExpiresAt)
	assert.Equal(t, payload.Token, repo.currentToken(1))
	require.NotNil(t, payload.GeofenceRadius)
	assert.Equal(t, uint(150), *payload.GeofenceRadius)
}

func TestTokenService_IssueInterval(t *testing.T) {
	repo := newFakeTokenTrainingRepo(tokenTestTraining())
	svc := newTokenServiceForTest(repo, 30*time.Second)

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	payload, err := svc.IssueInterval(context.Background(), 1)

	require.NoError(t, err)
	assert.Empty(t, payload.Date)
	assert.Equal(t, now.Add(30*time.Second).Unix(), payload.ExpiresAt)
}

func TestTokenService_CurrentPayload(t *testing.T) {
	t.Run("no token issued yet", func(t *testing.T) {
		repo := newFakeTokenTrainingRepo(tokenTestTraining())
		svc := newTokenServiceForTest(repo, time.Minute)

		_, err := svc.CurrentPayload(context.Background(), 1)

		assert.ErrorIs(t, err, ErrNoActiveToken)
	})

	t.Run("date-scoped outside a rotation session", func(t *testing.T) {
		repo := newFakeTokenTrainingRepo(tokenTestTraining())
		svc := newTokenServiceForTest(repo, time.Minute)
		svc.now = func() time.Time {
			return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
		}

		issued, err := svc.IssueDaily(context.Background(), 1)
		require.NoError(t, err)

		payload, err := svc.CurrentPayload(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, issued.Token, payload.Token)
		assert.Equal(t, issued.Date, payload.Date)
		assert.Zero(t, payload.ExpiresAt)
	})
}

func TestTokenService_Rotation(t *testing.T) {
	t.Run("the loop keeps replacing the token until stopped", func(t *testing.T) {
		repo := newFakeTokenTrainingRepo(tokenTestTraining())
		svc := newTokenServiceForTest(repo, 20*time.Millisecond)

		sessionID, err := svc.StartRotation(context.Background(), 1)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return repo.currentToken(1) != ""
		}, time.Second, 5*time.Millisecond)
		first := repo.currentToken(1)

		require.Eventually(t, func() bool {
			return repo.currentToken(1) != first
		}, time.Second, 5*time.Millisecond)

		require.NoError(t, svc.StopRotation(1, sessionID))

		// No further rotation after stop.
		settled := repo.currentToken(1)
		time.Sleep(60 * time.Millisecond)
		assert.Equal(t, settled, repo.currentToken(1))
	})

	t.Run("current payload is time-scoped while rotating", func(t *testing.T) {
		repo := newFakeTokenTrainingRepo(tokenTestTraining())
		svc := newTokenServiceForTest(repo, time.Minute)

		sessionID, err := svc.StartRotation(context.Background(), 1)
		require.NoError(t, err)
		defer func() {
			require.NoError(t, svc.StopRotation(1, sessionID))
		}()

		require.Eventually(t, func() bool {
			return repo.currentToken(1) != ""
		}, time.Second, 5*time.Millisecond)

		payload, err := svc.CurrentPayload(context.Background(), 1)

		require.NoError(t, err)
		assert.NotZero(t, payload.ExpiresAt)
		assert.Empty(t, payload.Date)
	})

	t.Run("stopping an unknown session", func(t *testing.T) {
		repo := newFakeTokenTrainingRepo(tokenTestTraining())
		svc := newTokenServiceForTest(repo, time.Minute)

		err := svc.StopRotation(1, uuid.New())

		assert.ErrorIs(t, err, ErrRotationNotActive)
	})

	t.Run("a new session supersedes the previous one", func(t *testing.T) {
		repo := newFakeTokenTrainingRepo(tokenTestTraining())
		svc := newTokenServiceForTest(repo, time.Minute)

		first, err := svc.StartRotation(context.Background(), 1)
		require.NoError(t, err)
		second, err := svc.StartRotation(context.Background(), 1)
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		assert.ErrorIs(t, svc.StopRotation(1, first), ErrRotationNotActive)
		assert.NoError(t, svc.StopRotation(1, second))
	})

	t.Run("starting rotation for an unknown training", func(t *testing.T) {
		repo := newFakeTokenTrainingRepo()
		svc := newTokenServiceForTest(repo, time.Minute)

		_, err := svc.StartRotation(context.Background(), 42)

		assert.ErrorIs(t, err, ErrTrainingNotFound)
	})
}
