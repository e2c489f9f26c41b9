package thread

import (
	"fmt"
	"strconv"
	"strings"
)

// PaymentRequestMarker is the sentinel substring that flags a message as an
// actionable payment request. The renderer turns it into an affordance that
// opens the payment dialog pre-filled with the embedded amount and project.
const PaymentRequestMarker = "[payment-request"

type PaymentRequest struct {
	SuggestedAmount string
	ProjectLabel    string
}

// BuildPaymentRequestBody composes the message a creator sends to request
// payment. The human-readable sentence carries the machine-readable marker.
func BuildPaymentRequestBody(amount, project string) string {
	return fmt.Sprintf("Payment requested for %q. %s amount=%s project=%s]",
		project, PaymentRequestMarker, amount, strconv.Quote(project))
}

// DetectPaymentRequest reports whether body carries a payment-request marker
// and, if so, the suggested amount and project label embedded in it. Fields
// missing from the marker come back empty; the caller applies defaults.
func DetectPaymentRequest(body string) (PaymentRequest, bool) {
	start := strings.Index(body, PaymentRequestMarker)
	if start < 0 {
		return PaymentRequest{}, false
	}
	rest := body[start+len(PaymentRequestMarker):]

	// Fields are consumed one at a time so a "]" inside a quoted project
	// label does not terminate the scan early. A marker that runs out of
	// input before its closing bracket still activates the affordance,
	// just without suggestions.
	req := PaymentRequest{}
	for {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			return PaymentRequest{}, true
		}
		if rest[0] == ']' {
			return req, true
		}
		switch {
		case strings.HasPrefix(rest, "amount="):
			rest = rest[len("amount="):]
			cut := strings.IndexAny(rest, " ]")
			if cut < 0 {
				cut = len(rest)
			}
			req.SuggestedAmount = rest[:cut]
			rest = rest[cut:]
		case strings.HasPrefix(rest, "project="):
			label, remainder, ok := unquoteLeading(rest[len("project="):])
			if !ok {
				return PaymentRequest{}, true
			}
			req.ProjectLabel = label
			rest = remainder
		default:
			// Unknown field: skip one token.
			cut := strings.IndexAny(rest, " ]")
			if cut < 0 {
				return PaymentRequest{}, true
			}
			rest = rest[cut:]
		}
	}
}

// unquoteLeading consumes a leading Go-quoted string from s. An unquoted
// value runs to the next space or the marker's closing bracket.
func unquoteLeading(s string) (value, rest string, ok bool) {
	if !strings.HasPrefix(s, `"`) {
		cut := strings.IndexAny(s, " ]")
		if cut < 0 {
			cut = len(s)
		}
		return s[:cut], s[cut:], true
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '"' && s[i-1] != '\\' {
			unquoted, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return "", "", false
			}
			return unquoted, s[i+1:], true
		}
	}
	return "", "", false
}
