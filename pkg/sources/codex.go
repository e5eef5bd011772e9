package sources

import (
	"encoding/json"
	"fmt"

	"github.com/harunnryd/chime/pkg/events"
)

// CodexAdapter parses Codex notify payloads passed as a JSON argv string.
type CodexAdapter struct{}

type codexPayload struct {
	Type                 string `json:"type"`
	LastAssistantMessage string `json:"last-assistant-message"`
}

func (CodexAdapter) Source() events.Source { return events.SourceCodex }

// Parse maps agent-turn-complete to AgentYield; unrecognized types are
// not an error, just nothing to announce.
func (a CodexAdapter) Parse(payload string) (*events.Event, error) {
	var raw codexPayload
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("parse codex payload: %w", err)
	}

	if raw.Type != "agent-turn-complete" {
		return nil, nil
	}

	event := events.New(events.AgentYield, events.SourceCodex)
	event.Summary = raw.LastAssistantMessage
	event.Context = json.RawMessage(payload)
	return event, nil
}
