// Package assets carries the built-in earcons so the binary works with
// no data files installed.
package assets

import "embed"

//go:embed earcons/*.wav
var Earcons embed.FS

// EarconFile maps an event type name to its bundled earcon path.
func EarconFile(eventType string) string {
	switch eventType {
	case "decision_required":
		return "earcons/decision.wav"
	case "error_retry":
		return "earcons/error.wav"
	default:
		return "earcons/yield.wav"
	}
}
