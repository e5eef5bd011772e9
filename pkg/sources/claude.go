package sources

import (
	"encoding/json"
	"fmt"

	"github.com/harunnryd/chime/pkg/events"
)

// ClaudeAdapter parses Claude Code hook payloads delivered on stdin.
type ClaudeAdapter struct{}

type claudePayload struct {
	HookEventName string          `json:"hook_event_name"`
	ToolName      string          `json:"tool_name"`
	Tool          json.RawMessage `json:"tool"`
	Message       string          `json:"message"`
}

func (ClaudeAdapter) Source() events.Source { return events.SourceClaude }

// Parse maps Stop and Notification hooks to AgentYield, and a
// PreToolUse of the AskUserQuestion tool to DecisionRequired. Other
// hook names are recognized but produce no event.
func (a ClaudeAdapter) Parse(payload string) (*events.Event, error) {
	var raw claudePayload
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("parse claude payload: %w", err)
	}

	switch raw.HookEventName {
	case "Stop", "Notification":
		event := events.New(events.AgentYield, events.SourceClaude)
		event.Summary = raw.Message
		event.Context = json.RawMessage(payload)
		return event, nil
	case "PreToolUse":
		if toolName(raw) == "AskUserQuestion" {
			event := events.New(events.DecisionRequired, events.SourceClaude)
			event.Context = json.RawMessage(payload)
			return event, nil
		}
		return nil, nil
	default:
		return nil, nil
	}
}

// toolName tolerates the three shapes Claude hook payloads have used:
// a top-level tool_name, a top-level tool string, or a tool object with
// a name field.
func toolName(raw claudePayload) string {
	if raw.ToolName != "" {
		return raw.ToolName
	}
	if len(raw.Tool) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw.Tool, &asString); err == nil {
		return asString
	}
	var asObject struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw.Tool, &asObject); err == nil {
		return asObject.Name
	}
	return ""
}
