// Package geoloc acquires a device location fix with accuracy
// refinement, a bounded wait, and graceful degradation.
//
// Acquisition is a small state machine (idle → sampling →
// resolved/failed) driven by three predicates: a sample meeting the
// target accuracy, the best sample falling under the accuracy ceiling
// after a minimum number of readings, and the overall deadline.
package geoloc

import (
	"context"
	"errors"
	"time"
)

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrNoFix               = errors.New("no location fix acquired before the deadline")
	ErrUnsupported         = errors.New("location service is not supported on this platform")
	ErrInsecureContext     = errors.New("location service requires a secure context")
)

// Fix is a resolved device position.
type Fix struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	Timestamp      time.Time
}

// Sample is one reading from a Provider. Err carries asynchronous
// platform failures such as permission revoked mid-watch or GPS
// dropout.
type Sample struct {
	Fix Fix
	Err error
}

// Provider streams continuous high-accuracy position updates.
//
// Watch returns one of the typed errors above when the platform
// refuses to start a watch at all, and must close the channel once ctx
// is done. Implementations must deliver fresh readings; a cached
// position older than a few seconds must not be replayed.
type Provider interface {
	Watch(ctx context.Context) (<-chan Sample, error)
}

type Options struct {
	// TargetAccuracy resolves the acquisition immediately when a sample
	// reaches it, in meters.
	TargetAccuracy float64

	// AccuracyCeiling is the loosest accuracy accepted once MinSamples
	// readings have arrived.
	AccuracyCeiling float64

	// MinSamples is the number of readings required before the ceiling
	// applies.
	MinSamples int

	// MaxWait bounds the whole acquisition. On expiry the best sample
	// seen so far wins; with no sample at all the acquisition fails.
	MaxWait time.Duration
}

const (
	DefaultTargetAccuracy  = 100
	DefaultAccuracyCeiling = 300
	DefaultMinSamples      = 2
	DefaultMaxWait         = 20 * time.Second
)

func (o Options) withDefaults() Options {
	if o.TargetAccuracy <= 0 {
		o.TargetAccuracy = DefaultTargetAccuracy
	}
	if o.AccuracyCeiling <= 0 {
		o.AccuracyCeiling = DefaultAccuracyCeiling
	}
	if o.MinSamples <= 0 {
		o.MinSamples = DefaultMinSamples
	}
	if o.MaxWait <= 0 {
		o.MaxWait = DefaultMaxWait
	}

	return o
}

// Acquire runs the acquisition against the provider. The provider
// subscription is always released on return, whichever way the
// acquisition ends. Cancelling ctx aborts with ctx.Err().
func Acquire(ctx context.Context, provider Provider, opts Options) (Fix, error) {
	opts = opts.withDefaults()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	samples, err := provider.Watch(watchCtx)
	if err != nil {
		return Fix{}, err
	}

	deadline := time.NewTimer(opts.MaxWait)
	defer deadline.Stop()

	var best *Fix
	seen := 0

	for {
		select {
		case sample, ok := <-samples:
			if !ok {
				// Watch ended without resolution; degrade to the best
				// reading in hand rather than failing outright.
				if best != nil {
					return *best, nil
				}

				return Fix{}, ErrPositionUnavailable
			}

			if sample.Err != nil {
				if best != nil {
					return *best, nil
				}

				return Fix{}, sample.Err
			}

			seen++
			if best == nil || sample.Fix.AccuracyMeters < best.AccuracyMeters {
				fix := sample.Fix
				best = &fix
			}

			if sample.Fix.AccuracyMeters <= opts.TargetAccuracy {
				return sample.Fix, nil
			}
			if seen >= opts.MinSamples && best.AccuracyMeters <= opts.AccuracyCeiling {
				return *best, nil
			}

		case <-deadline.C:
			if best != nil {
				return *best, nil
			}

			return Fix{}, ErrNoFix

		case <-ctx.Done():
			return Fix{}, ctx.Err()
		}
	}
}
