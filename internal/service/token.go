package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/traintrack/checkin-api/internal/config"
	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/repository"
	"github.com/traintrack/checkin-api/internal/token"
)

const DefaultRotationInterval = 30 * time.Second

var (
	ErrTrainingNotFound  = repository.ErrTrainingNotFound
	ErrNoActiveToken     = errors.New("training has no active token")
	ErrRotationNotActive = errors.New("no matching rotation session is active for this training")
)

type TokenTrainingRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Training, error)
	UpdateToken(ctx context.Context, id uint, token string, issuedAt time.Time) error
}

// TokenService issues and rotates per-training admission tokens.
// Issuance for a given training is serialized so the persisted token
// always reflects the most recent call.
type TokenService struct {
	repo       TokenTrainingRepository
	interval   time.Duration
	defaultTZ  string
	now        func() time.Time

	mu    sync.Mutex
	locks map[uint]*sync.Mutex

	sessionsMu sync.Mutex
	sessions   map[uint]*rotationSession
}

// rotationSession is one admin display session's rotation loop. Its
// lifetime is owned explicitly: Stop cancels the loop and waits for it
// to finish, so no ticker outlives the display session.
type rotationSession struct {
	id     uuid.UUID
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTokenService(repo TokenTrainingRepository, conf *config.CheckInConfig) *TokenService {
	interval := conf.RotationInterval
	if interval <= 0 {
		interval = DefaultRotationInterval
	}

	return &TokenService{
		repo:      repo,
		interval:  interval,
		defaultTZ: conf.DefaultTimezone,
		now:       time.Now,
		locks:     make(map[uint]*sync.Mutex),
		sessions:  make(map[uint]*rotationSession),
	}
}

// Issue generates a fresh token and persists it on the training,
// invalidating the previous one immediately.
func (s *TokenService) Issue(ctx context.Context, trainingID uint) (string, time.Time, error) {
	lock := s.trainingLock(trainingID)
	lock.Lock()
	defer lock.Unlock()

	tok, err := token.New()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token.New -> %w", err)
	}

	issuedAt := s.now()
	if err = s.repo.UpdateToken(ctx, trainingID, tok, issuedAt); err != nil {
		return "", time.Time{}, fmt.Errorf("s.repo.UpdateToken -> %w", err)
	}

	return tok, issuedAt, nil
}

// IssueDaily rotates the training's token and returns a date-scoped
// payload valid for the rest of the venue-local day.
func (s *TokenService) IssueDaily(ctx context.Context, trainingID uint) (domain.QRPayload, error) {
	training, err := s.repo.FindByID(ctx, trainingID)
	if err != nil {
		return domain.QRPayload{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	loc, err := training.Location(s.defaultTZ)
	if err != nil {
		return domain.QRPayload{}, fmt.Errorf("training.Location -> %w", err)
	}

	tok, issuedAt, err := s.Issue(ctx, trainingID)
	if err != nil {
		return domain.QRPayload{}, err
	}

	payload := s.basePayload(training, tok)
	payload.Date = issuedAt.In(loc).Format(domain.DateLayout)

	return payload, nil
}

// IssueInterval rotates the training's token and returns a time-scoped
// payload expiring one rotation interval from issuance.
func (s *TokenService) IssueInterval(ctx context.Context, trainingID uint) (domain.QRPayload, error) {
	training, err := s.repo.FindByID(ctx, trainingID)
	if err != nil {
		return domain.QRPayload{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	tok, issuedAt, err := s.Issue(ctx, trainingID)
	if err != nil {
		return domain.QRPayload{}, err
	}

	payload := s.basePayload(training, tok)
	payload.ExpiresAt = issuedAt.Add(s.interval).Unix()

	return payload, nil
}

// CurrentPayload rebuilds the displayable payload from the persisted
// token: time-scoped while a rotation session is running, date-scoped
// otherwise.
func (s *TokenService) CurrentPayload(ctx context.Context, trainingID uint) (domain.QRPayload, error) {
	training, err := s.repo.FindByID(ctx, trainingID)
	if err != nil {
		return domain.QRPayload{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if training.QRToken == "" || training.TokenIssuedAt == nil {
		return domain.QRPayload{}, ErrNoActiveToken
	}

	payload := s.basePayload(training, training.QRToken)

	if s.isRotating(trainingID) {
		payload.ExpiresAt = training.TokenIssuedAt.Add(s.interval).Unix()

		return payload, nil
	}

	loc, err := training.Location(s.defaultTZ)
	if err != nil {
		return domain.QRPayload{}, fmt.Errorf("training.Location -> %w", err)
	}
	payload.Date = training.TokenIssuedAt.In(loc).Format(domain.DateLayout)

	return payload, nil
}

// StartRotation begins interval rotation for a training and returns
// the display session id. A session already running for the same
// training is superseded, keeping a single active loop per training.
func (s *TokenService) StartRotation(ctx context.Context, trainingID uint) (uuid.UUID, error) {
	if _, err := s.repo.FindByID(ctx, trainingID); err != nil {
		return uuid.Nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	if prev, ok := s.sessions[trainingID]; ok {
		prev.cancel()
		<-prev.done
		zap.L().Info("superseded rotation session",
			zap.Uint("training_id", trainingID),
			zap.String("session_id", prev.id.String()))
	}

	// The loop is owned by the display session, not the HTTP request
	// that started it.
	loopCtx, cancel := context.WithCancel(context.Background())
	session := &rotationSession{
		id:     uuid.New(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.sessions[trainingID] = session

	go s.rotate(loopCtx, trainingID, session)

	return session.id, nil
}

// StopRotation tears down the rotation loop for the given session.
func (s *TokenService) StopRotation(trainingID uint, sessionID uuid.UUID) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	session, ok := s.sessions[trainingID]
	if !ok || session.id != sessionID {
		return ErrRotationNotActive
	}

	session.cancel()
	<-session.done
	delete(s.sessions, trainingID)

	return nil
}

func (s *TokenService) rotate(ctx context.Context, trainingID uint, session *rotationSession) {
	defer close(session.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if _, _, err := s.Issue(ctx, trainingID); err != nil {
		zap.L().Error("token rotation failed",
			zap.Uint("training_id", trainingID), zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if _, _, err := s.Issue(ctx, trainingID); err != nil {
				zap.L().Error("token rotation failed",
					zap.Uint("training_id", trainingID), zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *TokenService) isRotating(trainingID uint) bool {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	_, ok := s.sessions[trainingID]

	return ok
}

func (s *TokenService) trainingLock(trainingID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[trainingID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[trainingID] = lock
	}

	return lock
}

func (s *TokenService) basePayload(training domain.Training, tok string) domain.QRPayload {
	lat := training.Latitude
	lon := training.Longitude
	radius := training.GeofenceRadius

	return domain.QRPayload{
		TrainingID:     training.ID,
		Token:          tok,
		Latitude:       &lat,
		Longitude:      &lon,
		GeofenceRadius: &radius,
	}
}
