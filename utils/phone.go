package utils

import (
	"regexp"
	"strings"
)

var msisdnPattern = regexp.MustCompile(`^254[0-9]{9}$`)

// NormalizePhone converts the phone formats customers actually type
// ("0712 345 678", "+254712345678", "712-345-678") into the canonical
// 254XXXXXXXXX form M-Pesa expects. Unrecognized shapes are returned as their
// digits so that IsValidMsisdn rejects them; this function never errors.
func NormalizePhone(raw string) string {
	digits := stripNonDigits(raw)

	switch {
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		return "254" + digits[1:]
	case len(digits) == 9 && (strings.HasPrefix(digits, "7") || strings.HasPrefix(digits, "1")):
		return "254" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "254"):
		return digits
	case len(digits) == 11 && strings.HasPrefix(digits, "254"):
		// Seen from one aggregator sandbox; passed through and left to
		// validation rather than guessed at.
		return digits
	default:
		return digits
	}
}

// IsValidMsisdn reports whether phone is a canonical Kenyan mobile number.
// Callers must check this on NormalizePhone's output before hitting the
// gateway.
func IsValidMsisdn(phone string) bool {
	return msisdnPattern.MatchString(phone)
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
