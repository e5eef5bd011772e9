package broker

import (
	"strings"
	"unicode/utf8"
)

// TruncationSuffix is spoken in place of whatever was cut.
const TruncationSuffix = "Check the screen."

// DefaultSpokenCharsBudget keeps spoken text to a sentence or two.
const DefaultSpokenCharsBudget = 140

// Truncate bounds text handed to synthesis. Over-budget text is cut at
// the last word boundary inside the budget and the suffix appended
// exactly once. A budget of zero or less means no limit.
func Truncate(text string, budget int) string {
	if budget <= 0 || utf8.RuneCountInString(text) <= budget {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:budget])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	cut = strings.TrimRight(cut, " \t\n.,;:!?-")
	return cut + " " + TruncationSuffix
}
