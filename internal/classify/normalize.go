package classify

import (
	"strings"
	"unicode"
)

// PrefixMCC upper-cases a Market Category Code and prefixes it with "MCC".
// Empty input stays empty.
func PrefixMCC(v string) string {
	return withPrefix(v, "MCC")
}

// PrefixDG upper-cases a Deemed Group and prefixes it with "DG".
// Empty input stays empty.
func PrefixDG(v string) string {
	return withPrefix(v, "DG")
}

func withPrefix(v, prefix string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" || strings.HasPrefix(v, prefix) {
		return v
	}
	return prefix + v
}

// NormalizePhone strips all whitespace from a phone number
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
}
