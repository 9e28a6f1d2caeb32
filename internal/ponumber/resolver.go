// Package ponumber recovers purchase order numbers from free-form invoice text.
package ponumber

import (
	"regexp"
	"strings"
)

// labelPattern matches a purchase order label followed by the first run of
// digits on the same line. Matching is case-insensitive.
var labelPattern = regexp.MustCompile(`(?i)(?:PO|P\.O\.|CP|Purchase Order|Order)[^0-9\n]*?(\d+)`)

// Resolve extracts a purchase order number from text.
//
// It first looks for a labeled occurrence (PO, P.O., CP, Purchase Order,
// Order) and returns the first digit run after the label. If there is no
// labeled match but the text consists only of digits once spaces are
// ignored, those digits are returned. Otherwise Resolve returns the empty
// string. A non-empty result always contains digits only.
func Resolve(text string) string {
	if text == "" {
		return ""
	}

	if m := labelPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	compact := strings.ReplaceAll(text, " ", "")
	if compact != "" && isDigits(compact) {
		return compact
	}

	return ""
}

// Clean re-normalizes a purchase order candidate that is not purely
// numeric, e.g. "PO-4471" or "No. 4471/2". It returns the extracted digits,
// or the empty string when nothing can be recovered.
func Clean(candidate string) string {
	return Resolve("PO " + candidate)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
