package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Type classifies an agent lifecycle event.
type Type string

const (
	AgentYield       Type = "agent_yield"
	DecisionRequired Type = "decision_required"
	ErrorRetry       Type = "error_retry"
)

// Types lists every known event type in a stable order.
func Types() []Type {
	return []Type{AgentYield, DecisionRequired, ErrorRetry}
}

// ParseType accepts snake, SCREAMING and kebab spellings.
func ParseType(s string) (Type, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch Type(normalized) {
	case AgentYield, DecisionRequired, ErrorRetry:
		return Type(normalized), nil
	}
	return "", fmt.Errorf("unknown event type: %s", s)
}

// DefaultTemplate returns the stock spoken phrase for the type.
func (t Type) DefaultTemplate() string {
	switch t {
	case DecisionRequired:
		return "I need your input."
	case ErrorRetry:
		return "I hit an error. Please review."
	default:
		return "Ready."
	}
}

// Source identifies the agent CLI that produced an event.
type Source string

const (
	SourceClaude   Source = "claude"
	SourceCodex    Source = "codex"
	SourceOpenCode Source = "opencode"
)

// ParseSource accepts the source names used on the command line.
func ParseSource(s string) (Source, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "")
	switch normalized {
	case "claude":
		return SourceClaude, nil
	case "codex":
		return SourceCodex, nil
	case "opencode":
		return SourceOpenCode, nil
	}
	return "", fmt.Errorf("unknown source: %s", s)
}

// Priority orders competing renders. High cues must not queue behind
// Normal ones in renderers that hold a queue.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// PriorityFor is a pure function of the event type.
func PriorityFor(t Type) Priority {
	switch t {
	case DecisionRequired, ErrorRetry:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// Event is the canonical representation every adapter produces and every
// downstream stage consumes. Treated as immutable once constructed.
type Event struct {
	Type      Type            `json:"event_type"`
	Source    Source          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Summary   string          `json:"summary,omitempty"`
	Context   json.RawMessage `json:"context,omitempty"`
	Priority  Priority        `json:"priority"`
}

// New constructs an Event, stamping timestamp and derived priority.
func New(t Type, source Source) *Event {
	return &Event{
		Type:      t,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Priority:  PriorityFor(t),
	}
}
