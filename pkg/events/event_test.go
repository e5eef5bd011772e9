package events

import "testing"

func TestParseTypeAliases(t *testing.T) {
	cases := map[string]Type{
		"agent_yield":       AgentYield,
		"AGENT_YIELD":       AgentYield,
		"agent-yield":       AgentYield,
		"decision_required": DecisionRequired,
		"DECISION-REQUIRED": DecisionRequired,
		"error_retry":       ErrorRetry,
	}
	for in, want := range cases {
		got, err := ParseType(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %s, want %s", in, got, want)
		}
	}
	if _, err := ParseType("bogus"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestParseSource(t *testing.T) {
	for _, in := range []string{"opencode", "open-code", "OpenCode"} {
		got, err := ParseSource(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != SourceOpenCode {
			t.Fatalf("parse %q: got %s", in, got)
		}
	}
}

func TestPriorityDerivation(t *testing.T) {
	if got := New(AgentYield, SourceClaude).Priority; got != PriorityNormal {
		t.Fatalf("agent_yield priority: got %s", got)
	}
	if got := New(DecisionRequired, SourceClaude).Priority; got != PriorityHigh {
		t.Fatalf("decision_required priority: got %s", got)
	}
	if got := New(ErrorRetry, SourceCodex).Priority; got != PriorityHigh {
		t.Fatalf("error_retry priority: got %s", got)
	}
}

func TestDefaultTemplates(t *testing.T) {
	if AgentYield.DefaultTemplate() != "Ready." {
		t.Fatalf("unexpected yield template")
	}
	if DecisionRequired.DefaultTemplate() != "I need your input." {
		t.Fatalf("unexpected decision template")
	}
}
