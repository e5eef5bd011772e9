package configutil

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Schema lists the keys a backend's settings map may carry. Unknown
// keys are rejected so a typo like "endpont" fails config validation
// instead of silently falling back to a default.
type Schema struct {
	Required []string
	Optional []string
}

// ValidateSettings checks a settings map against its backend schema.
// Key comparison is case/underscore/hyphen insensitive, matching how
// DecodeSettings resolves fields.
func ValidateSettings(input map[string]any, schema Schema) error {
	allowed := make(map[string]struct{}, len(schema.Required)+len(schema.Optional))
	required := make(map[string]string, len(schema.Required))
	for _, k := range schema.Required {
		required[normalizeKey(k)] = k
		allowed[normalizeKey(k)] = struct{}{}
	}
	for _, k := range schema.Optional {
		allowed[normalizeKey(k)] = struct{}{}
	}

	var missing, unknown []string
	seen := make(map[string]bool, len(input))

	for k, v := range input {
		nk := normalizeKey(k)
		seen[nk] = true
		if _, ok := allowed[nk]; !ok {
			unknown = append(unknown, k)
		}
		if reqKey, ok := required[nk]; ok && isEmptyValue(v) {
			missing = append(missing, reqKey)
		}
	}
	for nk, reqKey := range required {
		if !seen[nk] {
			missing = append(missing, reqKey)
		}
	}

	if len(missing) == 0 && len(unknown) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(unknown)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(unknown) > 0 {
		parts = append(parts, "unknown: "+strings.Join(unknown, ", "))
	}
	return errors.New(strings.Join(parts, "; "))
}

// BackendSchema returns the settings schema for a known backend name,
// already folded to lowercase-hyphen form.
func BackendSchema(backend string) (Schema, error) {
	switch backend {
	case "pocket-tts":
		return Schema{Optional: []string{"endpoint", "variant", "voice", "format"}}, nil
	case "qwen3-tts":
		return Schema{Optional: []string{"endpoint", "model", "speaker", "language", "device"}}, nil
	case "deepgram":
		return Schema{Optional: []string{"api_key", "model", "encoding", "container"}}, nil
	case "say":
		return Schema{Optional: []string{"voice", "rate_wpm"}}, nil
	case "mock":
		return Schema{Optional: []string{"latency_ms", "fail_with", "duration_ms"}}, nil
	default:
		return Schema{}, fmt.Errorf("unknown backend: %s", backend)
	}
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}
