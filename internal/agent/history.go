package agent

import (
	"sort"
	"sync"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

// History is the exclusive-owned, mutex-guarded conversation the tool loop
// operates on. Per §5's shared-resource policy: never lock across a
// provider round-trip. Callers take a Snapshot, release the lock
// implicitly, make the provider call, then Append the results.
type History struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

// NewHistory builds a History seeded with a System message and the first
// User message, matching run_tool_loop's precondition that history[0] is
// System and the last message is User.
func NewHistory(system, firstUser string) *History {
	return &History{messages: []models.ChatMessage{
		models.System(system),
		models.User(firstUser),
	}}
}

// Snapshot returns an immutable copy of the current messages, safe to
// hand to a provider without holding the lock across the call.
func (h *History) Snapshot() []models.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.ChatMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

// Append adds messages to the end of the history.
func (h *History) Append(msgs ...models.ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msgs...)
}

// Len returns the current message count.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Trim applies TrimHistory to the live history in place.
func (h *History) Trim(maxTurns int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = TrimHistory(h.messages, maxTurns)
}

// TrimHistory implements the history-trimming algorithm: a no-op when
// maxTurns is 0 (unlimited) or when the user-message count is already at
// or below maxTurns. Otherwise it drops the oldest turns, rounding the
// cut point forward to the next User boundary if it would otherwise split
// an assistant/tool-call cluster.
func TrimHistory(h []models.ChatMessage, maxTurns int) []models.ChatMessage {
	if maxTurns <= 0 {
		return h
	}

	var userIdx []int
	for i, m := range h {
		if m.Role == models.RoleUser {
			userIdx = append(userIdx, i)
		}
	}
	u := len(userIdx)
	if u <= maxTurns {
		return h
	}

	skip := u - maxTurns
	pos := skip // (skip+1)-th user message, 1-indexed, is userIdx[skip]
	cut := userIdx[pos]

	// Never split an assistant/tool-call cluster: a Tool message sitting
	// right at the cut point means its issuing Assistant falls in the
	// range being dropped. Round forward to the next User boundary.
	for cut < len(h) && h[cut].Role == models.RoleTool {
		pos++
		if pos >= len(userIdx) {
			return h
		}
		cut = userIdx[pos]
	}

	trimmed := make([]models.ChatMessage, 0, len(h)-cut+1)
	trimmed = append(trimmed, h[0])
	trimmed = append(trimmed, h[cut:]...)
	return trimmed
}

// ValidateHistory checks the invariants from §3/§8: index 0 is System and
// no other index is System, and every Tool message is preceded by an
// Assistant bearing a matching tool call id.
func ValidateHistory(h []models.ChatMessage) error {
	if len(h) == 0 || h[0].Role != models.RoleSystem {
		return ErrBadHistory
	}
	seen := make(map[string]bool)
	for i, m := range h {
		switch m.Role {
		case models.RoleSystem:
			if i != 0 {
				return ErrBadHistory
			}
		case models.RoleAssistant:
			for _, tc := range m.ToolCalls {
				seen[tc.ID] = true
			}
		case models.RoleTool:
			if !seen[m.ToolCallID] {
				return ErrBadHistory
			}
		}
	}
	return nil
}

// InjectMemoryContext prepends a memory preamble to userText when entries
// are non-empty, in the form:
//
//	[Memory context]
//	- key: content
//	...
//	<blank line>
//	<original text>
//
// When entries is empty, userText is returned unchanged.
func InjectMemoryContext(userText string, entries map[string]string) string {
	if len(entries) == 0 {
		return userText
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := "[Memory context]\n"
	for _, k := range keys {
		out += "- " + k + ": " + entries[k] + "\n"
	}
	out += "\n" + userText
	return out
}
