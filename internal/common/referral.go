package common

import (
	"strings"
	"unicode"
)

const ReferralCodeLength = 8

// NormalizeReferralCode upper-cases code and drops every character that is not an ASCII letter
// or digit.
func NormalizeReferralCode(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r > unicode.MaxASCII {
			continue
		}

		r = unicode.ToUpper(r)
		if ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}
