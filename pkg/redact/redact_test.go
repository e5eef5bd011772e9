package redact

import (
	"strings"
	"testing"
)

func TestTextDisabledPassesThrough(t *testing.T) {
	SetEnabled(false)
	in := "wrote a draft reply to dev@acme.io, call back on +1 415 555 0199"
	if got := Text(in); got != in {
		t.Fatalf("expected no redaction, got %q", got)
	}
}

func TestTextMasksContactDetails(t *testing.T) {
	SetEnabled(true)
	got := Text("wrote a draft reply to dev@acme.io, call back on +1 415 555 0199")
	if strings.Contains(got, "acme.io") {
		t.Fatalf("email survived redaction: %q", got)
	}
	if !strings.Contains(got, "[REDACTED_EMAIL]") {
		t.Fatalf("missing email marker in %q", got)
	}
	if !strings.Contains(got, "[REDACTED_PHONE]") {
		t.Fatalf("missing phone marker in %q", got)
	}
}

func TestSummaryClipsLongText(t *testing.T) {
	SetEnabled(false)
	in := strings.Repeat("x", 400)
	got := Summary(in)
	if len([]rune(got)) != maxLoggedSummary+1 {
		t.Fatalf("expected clipped summary, got %d runes", len([]rune(got)))
	}
}
