package sources

import (
	"errors"

	"github.com/harunnryd/chime/pkg/events"
)

// OpenCodeAdapter covers the flag-driven source: OpenCode plugins pass
// the event type and optional summary as explicit flags, so there is no
// payload to parse.
type OpenCodeAdapter struct{}

func (OpenCodeAdapter) Source() events.Source { return events.SourceOpenCode }

// Parse always fails for opencode; use FromFlags.
func (a OpenCodeAdapter) Parse(string) (*events.Event, error) {
	return nil, errors.New("opencode events arrive via --event, not a payload")
}

// FromFlags builds an event from the explicit --event / --summary flags.
func (a OpenCodeAdapter) FromFlags(t events.Type, summary string) *events.Event {
	event := events.New(t, events.SourceOpenCode)
	event.Summary = summary
	return event
}
