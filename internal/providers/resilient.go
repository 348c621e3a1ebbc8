package providers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/haasonsaas/nexuscore/internal/backoff"
	"github.com/haasonsaas/nexuscore/pkg/models"
)

// Resilient wraps a Provider with bounded retry and exponential back-off
// on transient failures (§4.2/§7): 5xx responses, connection errors, and
// timeouts. Each retry is a full new HTTP request carrying the same body
// — no partial state is kept between attempts, following the teacher's
// BaseProvider.Retry idiom in internal/agent/providers/base.go, adapted
// from linear to the shared exponential internal/backoff policy.
type Resilient struct {
	Inner       Provider
	MaxAttempts int
	Policy      backoff.Policy
	Sleep       func(context.Context, time.Duration) error
}

// Provider mirrors internal/agent.Provider structurally so this package
// has no import-cycle dependency on internal/agent; WireProvider and
// Resilient both satisfy it.
type Provider interface {
	ChatWithSystem(ctx context.Context, system *string, userText, model string, temperature float64) (string, error)
	ChatWithTools(ctx context.Context, history []models.ChatMessage, toolDefs []models.ToolDefinition, model string, temperature float64) (models.ChatResponse, error)
}

// NewResilient builds a Resilient wrapper with the default provider
// back-off policy and up to 4 attempts (1 initial + 3 retries).
func NewResilient(inner Provider) *Resilient {
	return &Resilient{
		Inner:       inner,
		MaxAttempts: 4,
		Policy:      backoff.DefaultProviderPolicy(),
		Sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Resilient) ChatWithTools(ctx context.Context, history []models.ChatMessage, toolDefs []models.ToolDefinition, model string, temperature float64) (models.ChatResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts(); attempt++ {
		resp, err := r.Inner.ChatWithTools(ctx, history, toolDefs, model, temperature)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == r.maxAttempts() {
			return models.ChatResponse{}, err
		}
		if sleepErr := r.sleep(ctx, attempt); sleepErr != nil {
			return models.ChatResponse{}, sleepErr
		}
	}
	return models.ChatResponse{}, lastErr
}

func (r *Resilient) ChatWithSystem(ctx context.Context, system *string, userText, model string, temperature float64) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts(); attempt++ {
		text, err := r.Inner.ChatWithSystem(ctx, system, userText, model, temperature)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == r.maxAttempts() {
			return "", err
		}
		if sleepErr := r.sleep(ctx, attempt); sleepErr != nil {
			return "", sleepErr
		}
	}
	return "", lastErr
}

func (r *Resilient) maxAttempts() int {
	if r.MaxAttempts <= 0 {
		return 1
	}
	return r.MaxAttempts
}

func (r *Resilient) sleep(ctx context.Context, attempt int) error {
	d := backoff.Compute(r.Policy, attempt)
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	return sleepCtx(ctx, d)
}

// isRetryable classifies an error as transient per §7: HTTP 5xx,
// connection errors, and timeouts are retried; permanent provider errors
// (4xx other than 404, JSON-parse failures) are not.
func isRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, http.ErrHandlerTimeout) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") || strings.Contains(msg, "eof")
}
