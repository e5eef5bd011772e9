// Package sources normalizes agent-specific hook payloads into the
// canonical event model. One adapter per agent CLI; all adapters share
// the same contract: zero or one event per payload, with a nil event
// meaning "recognized but nothing to announce".
package sources

import (
	"fmt"

	"github.com/harunnryd/chime/pkg/errorsx"
	"github.com/harunnryd/chime/pkg/events"
)

// Adapter maps a raw source payload to the canonical event model.
type Adapter interface {
	// Source returns the agent this adapter understands.
	Source() events.Source
	// Parse returns (nil, nil) when the payload is well-formed but
	// carries no announceable event. A non-nil error means the payload
	// was malformed; callers log it and stay silent.
	Parse(payload string) (*events.Event, error)
}

// For returns the adapter for a source.
func For(source events.Source) (Adapter, error) {
	switch source {
	case events.SourceClaude:
		return ClaudeAdapter{}, nil
	case events.SourceCodex:
		return CodexAdapter{}, nil
	case events.SourceOpenCode:
		return OpenCodeAdapter{}, nil
	}
	return nil, fmt.Errorf("no adapter for source: %s", source)
}

// ParseEvent is the package-level entry the CLI uses.
func ParseEvent(source events.Source, payload string) (*events.Event, error) {
	adapter, err := For(source)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAdapterParse)
	}
	event, err := adapter.Parse(payload)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAdapterParse)
	}
	return event, nil
}
