package mpesa

import (
	"strconv"
	"strings"
)

// Webhook and initiation payloads from the aggregator do not have one stable
// shape: fields show up at the top level, under "data", or under "metadata",
// and under different spellings depending on which integration path produced
// them. Each field therefore has an ordered alias list, and every alias is
// tried against data.X, then X, then metadata.X before moving on.

var (
	transactionRefAliases = []string{
		"TransactionReference", "transaction_reference",
		"MpesaReceiptNumber", "mpesa_receipt_number",
		"CheckoutRequestID", "checkout_request_id",
		"reference",
	}
	externalRefAliases = []string{
		"external_reference", "ExternalReference",
		"account_reference", "AccountReference",
		"BillRefNumber",
	}
	responseCodeAliases = []string{
		"ResponseCode", "response_code",
		"ResultCode", "result_code",
		"status_code",
	}
	responseDescAliases = []string{
		"ResponseDescription", "response_description",
		"ResultDesc", "result_desc",
		"description", "message",
	}
)

// lookup tries each alias against data.X, X and metadata.X in that order and
// returns the first value present.
func lookup(payload map[string]interface{}, aliases []string) (interface{}, bool) {
	if payload == nil {
		return nil, false
	}
	data, _ := payload["data"].(map[string]interface{})
	metadata, _ := payload["metadata"].(map[string]interface{})

	for _, alias := range aliases {
		if data != nil {
			if v, ok := data[alias]; ok {
				return v, true
			}
		}
		if v, ok := payload[alias]; ok {
			return v, true
		}
		if metadata != nil {
			if v, ok := metadata[alias]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

func asString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; references and codes are integral.
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// TransactionReference extracts the provider's transaction identifier from a
// payload, or "" when none of the known aliases is present.
func TransactionReference(payload map[string]interface{}) string {
	if v, ok := lookup(payload, transactionRefAliases); ok {
		return asString(v)
	}
	return ""
}

// ExternalReference extracts the caller-supplied reference (typically an
// order number) echoed back by the provider.
func ExternalReference(payload map[string]interface{}) string {
	if v, ok := lookup(payload, externalRefAliases); ok {
		return asString(v)
	}
	return ""
}

// ResponseCode extracts the provider's result code. ok is false when the
// payload carries no recognizable code at all.
func ResponseCode(payload map[string]interface{}) (code string, ok bool) {
	v, ok := lookup(payload, responseCodeAliases)
	if !ok {
		return "", false
	}
	return asString(v), true
}

// ResponseDescription extracts the provider's human-readable result text.
func ResponseDescription(payload map[string]interface{}) string {
	if v, ok := lookup(payload, responseDescAliases); ok {
		return asString(v)
	}
	return ""
}

// IsSuccess decides whether a callback payload reports a successful payment.
// Three signals are accepted because the provider's webhook shape differs
// between its documented schema and what it actually sends: an explicit
// success boolean, a numerically-zero response code, or a description
// containing "success". Anything short of a clear signal is not a success.
func IsSuccess(payload map[string]interface{}) bool {
	if v, ok := lookup(payload, []string{"success"}); ok {
		if b, isBool := v.(bool); isBool && b {
			return true
		}
	}

	if code, ok := ResponseCode(payload); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(code)); err == nil && n == 0 {
			return true
		}
	}

	return strings.Contains(strings.ToLower(ResponseDescription(payload)), "success")
}

// InitiationAccepted decides whether an initiation response means the push
// was accepted: an explicit success boolean or the presence of a data
// object. No clear signal defaults to false; an ambiguous provider answer is
// recorded as a failed attempt rather than a phantom success.
func InitiationAccepted(payload map[string]interface{}) bool {
	if b, ok := payload["success"].(bool); ok && b {
		return true
	}
	_, hasData := payload["data"].(map[string]interface{})
	return hasData
}

// Data returns the payload's data object when present, else the payload
// itself, so callers always have something to hand back to the UI.
func Data(payload map[string]interface{}) map[string]interface{} {
	if data, ok := payload["data"].(map[string]interface{}); ok {
		return data
	}
	return payload
}
