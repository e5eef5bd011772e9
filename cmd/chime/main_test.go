package main

import (
	"strings"
	"testing"

	"github.com/harunnryd/chime/pkg/events"
	"github.com/stretchr/testify/require"
)

func TestResolveEventExplicitFlag(t *testing.T) {
	event, err := resolveEvent(events.SourceOpenCode, "decision-required", "pick a database", strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, events.DecisionRequired, event.Type)
	require.Equal(t, events.SourceOpenCode, event.Source)
	require.Equal(t, "pick a database", event.Summary)
}

func TestResolveEventOpenCodeRequiresFlag(t *testing.T) {
	_, err := resolveEvent(events.SourceOpenCode, "", "", strings.NewReader("{}"))
	require.Error(t, err)
}

func TestResolveEventClaudePayload(t *testing.T) {
	payload := `{"hook_event_name": "Stop"}`
	event, err := resolveEvent(events.SourceClaude, "", "", strings.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, events.AgentYield, event.Type)
	require.Equal(t, events.SourceClaude, event.Source)
}

func TestResolveEventBadPayload(t *testing.T) {
	_, err := resolveEvent(events.SourceClaude, "", "", strings.NewReader("not json"))
	require.Error(t, err)
}

func TestResolveEventUnknownType(t *testing.T) {
	_, err := resolveEvent(events.SourceOpenCode, "agent_sleep", "", strings.NewReader(""))
	require.Error(t, err)
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"notify", "system-info", "models", "test-tts", "config", "voicepack"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}
}
