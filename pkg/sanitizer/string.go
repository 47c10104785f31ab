// Package sanitizer normalizes rider-submitted text before validation and
// storage. All functions are idempotent and never return errors; invalid
// input degrades to the empty string.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims leading/trailing whitespace and collapses interior
// runs of whitespace to a single space. Whitespace-only input becomes "".
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeMobile keeps digits and a single leading plus sign. The mobile
// number is contact information, not an authentication factor, so lenient
// normalization is enough here.
func NormalizeMobile(mobile string) string {
	mobile = TrimAndNormalize(mobile)

	var result strings.Builder
	for i, r := range mobile {
		if r == '+' && i == 0 {
			result.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// NormalizePaymentTime only trims; payment time stays free text as typed.
func NormalizePaymentTime(paymentTime string) string {
	return TrimAndNormalize(paymentTime)
}
