package payments

import (
	"errors"
	"log"
	"math"
	"strconv"
	"strings"
)

var errInvalidAmount = errors.New("amount must be a positive whole number")

// firstString returns the first non-empty string found under any of the
// given keys. Mobile clients have historically sent the phone number under
// several names, so the initiate endpoint accepts all of them.
func firstString(req map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := req[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// parseAmount accepts the amount as a JSON number or a numeric string and
// requires a positive integer in shillings.
func parseAmount(v interface{}) (int64, error) {
	switch val := v.(type) {
	case float64:
		if val <= 0 || val != math.Trunc(val) {
			return 0, errInvalidAmount
		}
		return int64(val), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil || n <= 0 {
			return 0, errInvalidAmount
		}
		return n, nil
	default:
		return 0, errInvalidAmount
	}
}

// nonCritical runs a side effect that must never fail the surrounding
// operation. The step is logged on failure and the error goes no further.
func nonCritical(step string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("Non-critical step failed (%s): %v", step, err)
	}
}
