// Package redact scrubs agent transcript summaries before they reach
// log sinks. Summaries arrive from third-party agent payloads and can
// quote anything the user typed, so contact details are masked when the
// redact_summaries config flag is on.
package redact

import (
	"regexp"
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

var enabled atomic.Bool

var (
	emailRe = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	phoneRe = regexp.MustCompile(`\b\+?\d[\d\s\-]{7,}\d\b`)
)

// maxLoggedSummary bounds how much transcript text a single log record
// may carry.
const maxLoggedSummary = 256

// SetEnabled toggles summary redaction.
func SetEnabled(v bool) {
	enabled.Store(v)
}

// Enabled returns true when redaction is active.
func Enabled() bool {
	return enabled.Load()
}

// Text masks emails and phone numbers when enabled.
func Text(in string) string {
	if !enabled.Load() || strings.TrimSpace(in) == "" {
		return in
	}
	out := emailRe.ReplaceAllString(in, "[REDACTED_EMAIL]")
	out = phoneRe.ReplaceAllString(out, "[REDACTED_PHONE]")
	return out
}

// Summary applies Text and clips the result for log output.
func Summary(in string) string {
	out := Text(in)
	if utf8.RuneCountInString(out) <= maxLoggedSummary {
		return out
	}
	runes := []rune(out)
	return string(runes[:maxLoggedSummary]) + "…"
}
