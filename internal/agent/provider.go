package agent

import (
	"context"
	"time"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

// Provider is the LLM adapter the tool loop drives. Concrete
// implementations (internal/providers) hand-roll the wire format; the
// loop only depends on this interface, following the "accept interfaces"
// idiom.
type Provider interface {
	// ChatWithSystem is the single-turn fallback used by, e.g., the
	// Responses-API path when chat/completions 404s.
	ChatWithSystem(ctx context.Context, system *string, userText, model string, temperature float64) (string, error)

	// ChatWithTools is the primary operation the loop calls every
	// iteration.
	ChatWithTools(ctx context.Context, history []models.ChatMessage, toolDefs []models.ToolDefinition, model string, temperature float64) (models.ChatResponse, error)
}

// Observer receives events from the tool harness. Implementations must be
// safe for concurrent use.
type Observer interface {
	OnToolCall(name string, d time.Duration, success bool)
}

// NoopObserver discards every event.
type NoopObserver struct{}

func (NoopObserver) OnToolCall(string, time.Duration, bool) {}
