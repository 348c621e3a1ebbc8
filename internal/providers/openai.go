package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

// AuthScheme names how the API key is attached to each request.
type AuthScheme string

const (
	// AuthBearer sends "Authorization: Bearer <key>".
	AuthBearer AuthScheme = "bearer"
	// AuthAPIKeyHeader sends "x-api-key: <key>".
	AuthAPIKeyHeader AuthScheme = "x-api-key"
	// AuthCustomHeader sends "<HeaderName>: <key>" verbatim.
	AuthCustomHeader AuthScheme = "custom"
)

// WireProvider is the OpenAI-compatible wire provider from §4.2. It
// hand-rolls its HTTP transport on net/http because go-openai's own
// client hardcodes endpoint construction and the Bearer auth scheme,
// neither of which this kernel's configurable-endpoint/configurable-auth
// contract allows; every struct that crosses the wire still reuses
// go-openai's message/tool shapes (see wire.go) to stay grounded in the
// teacher's chosen wire library.
type WireProvider struct {
	// BaseURL is the configured base. If it already ends with
	// "chat/completions" it is used verbatim; otherwise
	// "/chat/completions" is appended.
	BaseURL string
	APIKey  string

	AuthScheme     AuthScheme
	CustomHeader   string // used when AuthScheme == AuthCustomHeader

	HTTPClient *http.Client

	// RequestTimeout records the end-to-end bound for one HTTP round trip.
	// It is enforced through HTTPClient.Timeout; NewWireProvider sets both
	// to 120s and gives the client's transport a 10s connect timeout.
	RequestTimeout time.Duration
}

// NewWireProvider builds a WireProvider with the default timeouts from §5.
func NewWireProvider(baseURL, apiKey string, scheme AuthScheme) *WireProvider {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	return &WireProvider{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		AuthScheme:     scheme,
		HTTPClient:     &http.Client{Timeout: 120 * time.Second, Transport: transport},
		RequestTimeout: 120 * time.Second,
	}
}

func (p *WireProvider) chatCompletionsURL() string {
	if strings.HasSuffix(p.BaseURL, "chat/completions") {
		return p.BaseURL
	}
	return strings.TrimRight(p.BaseURL, "/") + "/chat/completions"
}

// responsesURL resolves the Responses-API fallback endpoint: used
// verbatim if it already contains "responses", otherwise "/v1/responses"
// is appended to the base.
func (p *WireProvider) responsesURL() string {
	if strings.Contains(p.BaseURL, "responses") {
		return p.BaseURL
	}
	return strings.TrimRight(p.BaseURL, "/") + "/v1/responses"
}

func (p *WireProvider) applyAuth(req *http.Request) {
	switch p.AuthScheme {
	case AuthAPIKeyHeader:
		req.Header.Set("x-api-key", p.APIKey)
	case AuthCustomHeader:
		name := p.CustomHeader
		if name == "" {
			name = "Authorization"
		}
		req.Header.Set(name, p.APIKey)
	default:
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}
}

// ErrNotFound is returned by doPost when the endpoint responds 404, so
// ChatWithSystem can trigger the Responses-API fallback.
type ErrNotFound struct{ URL string }

func (e *ErrNotFound) Error() string { return fmt.Sprintf("404 from %s", e.URL) }

// HTTPError carries a non-2xx, non-404 response's status and body (§7).
// isRetryable treats a 5xx status as transient and any other as permanent.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d: %s", e.StatusCode, e.Body)
}

func (p *WireProvider) doPost(ctx context.Context, url string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.applyAuth(req)

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ErrNotFound{URL: url}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// ChatWithTools is the primary operation: serializes history and tool
// definitions to the strict wire request, posts to the chat-completions
// endpoint, and parses the first choice into a ChatResponse. It never
// falls back to the Responses API (§4.2).
func (p *WireProvider) ChatWithTools(ctx context.Context, history []models.ChatMessage, toolDefs []models.ToolDefinition, model string, temperature float64) (models.ChatResponse, error) {
	reqBody := wireRequest{
		Model:       model,
		Messages:    toWireMessages(history),
		Temperature: float32(temperature),
		Tools:       toWireTools(toolDefs),
	}

	raw, err := p.doPost(ctx, p.chatCompletionsURL(), reqBody)
	if err != nil {
		return models.ChatResponse{}, err
	}

	var resp wireResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return models.ChatResponse{}, fmt.Errorf("parse response: %w", err)
	}
	msg, ok := resp.firstMessage()
	if !ok {
		return models.ChatResponse{}, fmt.Errorf("provider response had no choices")
	}
	return toChatResponse(msg), nil
}

// ChatWithSystem is the single-turn fallback. If the chat-completions
// endpoint 404s, it retries once against the Responses-API endpoint
// (§4.2); ChatWithTools never does this.
func (p *WireProvider) ChatWithSystem(ctx context.Context, system *string, userText, model string, temperature float64) (string, error) {
	history := make([]models.ChatMessage, 0, 2)
	if system != nil {
		history = append(history, models.System(*system))
	}
	history = append(history, models.User(userText))

	reqBody := wireRequest{
		Model:       model,
		Messages:    toWireMessages(history),
		Temperature: float32(temperature),
	}

	raw, err := p.doPost(ctx, p.chatCompletionsURL(), reqBody)
	if err != nil {
		var notFound *ErrNotFound
		if !errors.As(err, &notFound) {
			return "", err
		}
		raw, err = p.doPost(ctx, p.responsesURL(), reqBody)
		if err != nil {
			return "", err
		}
	}

	var resp wireResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	msg, ok := resp.firstMessage()
	if !ok {
		return "", fmt.Errorf("provider response had no choices")
	}
	return msg.Content, nil
}
