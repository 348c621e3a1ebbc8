// Package backoff computes exponential backoff durations shared by the
// daemon supervisor's restart loop and the provider resilience wrapper.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Policy defines the parameters for exponential backoff calculation.
type Policy struct {
	// Initial is the backoff duration after the first failure.
	Initial time.Duration
	// Max is the backoff duration ceiling; successive failures never
	// sleep longer than this.
	Max time.Duration
	// Factor is the exponential growth factor applied per attempt.
	Factor float64
	// Jitter is the randomization factor (0.0 to 1.0) applied on top of
	// the computed base. Zero means pure doubling with no randomization,
	// which is what the daemon supervisor's testable back-off sequence
	// requires.
	Jitter float64
}

// NewSupervisorPolicy builds the pure-doubling policy the daemon
// supervisor's restart loop uses: b, min(2b, M), min(4b, M), ... Both
// bounds are clamped to at least one second; max is raised to initial if
// it was configured smaller.
func NewSupervisorPolicy(initial, max time.Duration) Policy {
	if initial < time.Second {
		initial = time.Second
	}
	if max < time.Second {
		max = time.Second
	}
	if max < initial {
		max = initial
	}
	return Policy{Initial: initial, Max: max, Factor: 2, Jitter: 0}
}

// DefaultProviderPolicy is the retry backoff for transient provider
// errors: short initial delay, moderate cap, light jitter to avoid
// synchronized retry storms across concurrent turns.
func DefaultProviderPolicy() Policy {
	return Policy{Initial: 200 * time.Millisecond, Max: 10 * time.Second, Factor: 2, Jitter: 0.1}
}

// Compute calculates the backoff duration for a given attempt number.
// base = initial * factor^(attempt-1); returns min(max, base+jitter).
// Attempt numbers start at 1.
func Compute(p Policy, attempt int) time.Duration {
	return ComputeWithRand(p, attempt, rand.Float64()) // #nosec G404 -- jitter does not require cryptographic randomness
}

// ComputeWithRand is Compute with an injected random value in [0, 1) so
// tests can assert exact durations.
func ComputeWithRand(p Policy, attempt int, randomValue float64) time.Duration {
	exp := math.Max(float64(attempt-1), 0)
	base := float64(p.Initial) * math.Pow(p.Factor, exp)
	jitter := base * p.Jitter * randomValue
	total := math.Min(float64(p.Max), base+jitter)
	return time.Duration(math.Round(total))
}
