// Package scanner drives the trainee-side check-in flow: acquire a
// device location fix, run the optional client-side geofence pre-check
// from the hints embedded in the QR payload, and submit the scan to the
// attendance API.
package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/geo"
	"github.com/traintrack/checkin-api/internal/geoloc"
)

const defaultRequestTimeout = 15 * time.Second

// Result is the outcome of a single scan attempt. Exactly one of
// Accepted or Rejection is meaningful: a rejected scan carries the
// typed refusal, an accepted one the server's confirmation.
type Result struct {
	Accepted  bool
	CheckIn   *CheckInConfirmation
	Rejection *domain.Rejection
}

type CheckInConfirmation struct {
	Message        string    `json:"message"`
	TrainingID     uint      `json:"training_id"`
	TrainingName   string    `json:"training_name"`
	Date           string    `json:"date"`
	CheckInTime    time.Time `json:"check_in_time"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
	WithinGeofence *bool     `json:"within_geofence,omitempty"`
}

type checkInRequest struct {
	Payload  string             `json:"payload"`
	Location *domain.Coordinate `json:"location,omitempty"`
}

// Scanner submits scanned QR values to the attendance API on behalf of
// an authenticated trainee.
type Scanner struct {
	baseURL  string
	token    string
	client   *http.Client
	provider geoloc.Provider
	opts     geoloc.Options
}

func New(baseURL, bearerToken string, provider geoloc.Provider) *Scanner {
	return &Scanner{
		baseURL:  baseURL,
		token:    bearerToken,
		client:   &http.Client{Timeout: defaultRequestTimeout},
		provider: provider,
	}
}

// WithAcquisitionOptions overrides the location acquisition tuning.
func (s *Scanner) WithAcquisitionOptions(opts geoloc.Options) *Scanner {
	s.opts = opts

	return s
}

// Scan runs the full client flow for one scanned QR value.
//
// Location acquisition failures resolve locally as the typed location
// rejection, without a network round-trip the server would refuse
// anyway. Context cancellation aborts with the context's error.
func (s *Scanner) Scan(ctx context.Context, rawPayload string) (Result, error) {
	payload, rejection := domain.ParseQRPayload(rawPayload)
	if rejection != nil {
		return Result{Rejection: rejection}, nil
	}

	fix, locErr := geoloc.Acquire(ctx, s.provider, s.opts)
	if locErr != nil {
		if errors.Is(locErr, context.Canceled) || errors.Is(locErr, context.DeadlineExceeded) {
			return Result{}, locErr
		}

		zap.L().Warn("location acquisition failed",
			zap.Uint("training_id", payload.TrainingID),
			zap.Error(locErr))

		return Result{Rejection: RejectionForLocationError(locErr)}, nil
	}

	coord := &domain.Coordinate{
		Latitude:       fix.Latitude,
		Longitude:      fix.Longitude,
		AccuracyMeters: fix.AccuracyMeters,
	}

	// Pre-check against the venue hints baked into the payload. This
	// only short-circuits an obviously hopeless submission; the server
	// re-derives the geofence from its own records either way.
	if rej := precheckGeofence(payload, coord); rej != nil {
		return Result{Rejection: rej}, nil
	}

	return s.submit(ctx, rawPayload, coord)
}

// RejectionForLocationError maps a location acquisition failure to the
// rejection a strict-enforcement server would produce, letting the UI
// explain the problem without a round-trip.
func RejectionForLocationError(err error) *domain.Rejection {
	switch {
	case errors.Is(err, geoloc.ErrPermissionDenied):
		return domain.NewRejection(domain.RejectionLocationPermissionDenied,
			"location permission is required to check in, enable it in your device settings")
	case errors.Is(err, geoloc.ErrNoFix):
		return domain.NewRejection(domain.RejectionLocationTimeout,
			"could not get a location fix in time, move to an open area and retry")
	default:
		return domain.NewRejection(domain.RejectionLocationUnavailable,
			"your location is currently unavailable")
	}
}

func precheckGeofence(payload domain.QRPayload, coord *domain.Coordinate) *domain.Rejection {
	if payload.Latitude == nil || payload.Longitude == nil || payload.GeofenceRadius == nil {
		return nil
	}

	distance := geo.Distance(coord.Latitude, coord.Longitude, *payload.Latitude, *payload.Longitude)
	if geo.WithinRadius(distance, float64(*payload.GeofenceRadius)) {
		return nil
	}

	return domain.RejectOutOfRange(distance, *payload.GeofenceRadius)
}

func (s *Scanner) submit(ctx context.Context, rawPayload string, coord *domain.Coordinate) (Result, error) {
	body, err := json.Marshal(checkInRequest{
		Payload:  rawPayload,
		Location: coord,
	})
	if err != nil {
		return Result{}, fmt.Errorf("scanner.submit -> json.Marshal -> %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/check-ins", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("scanner.submit -> http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("scanner.submit -> client.Do -> %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var confirmation CheckInConfirmation
		if err = json.NewDecoder(resp.Body).Decode(&confirmation); err != nil {
			return Result{}, fmt.Errorf("scanner.submit -> decode confirmation -> %w", err)
		}

		return Result{Accepted: true, CheckIn: &confirmation}, nil

	case http.StatusUnprocessableEntity:
		var rejection domain.Rejection
		if err = json.NewDecoder(resp.Body).Decode(&rejection); err != nil {
			return Result{}, fmt.Errorf("scanner.submit -> decode rejection -> %w", err)
		}

		return Result{Rejection: &rejection}, nil

	default:
		return Result{}, fmt.Errorf("scanner.submit -> unexpected status %v", resp.StatusCode)
	}
}
