package pushover

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoReceipt is returned by [EmergencyNotification.Poll] and
// [EmergencyNotification.Cancel] when the notification has no receipt to
// query, typically because the send itself was rejected.
var ErrNoReceipt = errors.New("notification has no receipt")

// reservedResponseKeys are the top-level keys of an error body that carry
// response metadata. Every other key names an input the API rejected.
var reservedResponseKeys = map[string]struct{}{
	"errors":  {},
	"status":  {},
	"receipt": {},
	"request": {},
}

// APIError is a validation error reported by the API on a 4xx response.
// Responses with any other non-2xx status are synthesized into an APIError
// with Status 0, so callers have a single error channel for every non-2xx
// outcome.
type APIError struct {
	// RequestID is the id the API assigned to the failed request.
	RequestID string

	// Status is the status field of the response body, 0 for synthesized
	// errors.
	Status int

	// Messages holds the human-readable error messages.
	Messages []string

	// BadInputs maps each rejected input name to the reason it was
	// rejected.
	BadInputs map[string]string
}

func newAPIError(body map[string]any) *APIError {
	e := &APIError{
		RequestID: stringField(body, "request"),
		Status:    intField(body, "status"),
		BadInputs: make(map[string]string),
	}

	if raw, ok := body["errors"].([]any); ok {
		for _, m := range raw {
			if s, ok := m.(string); ok {
				e.Messages = append(e.Messages, s)
			}
		}
	}

	for key, value := range body {
		if _, reserved := reservedResponseKeys[key]; !reserved {
			e.BadInputs[key] = fmt.Sprint(value)
		}
	}

	return e
}

func (e *APIError) Error() string {
	msg := strings.Join(e.Messages, " ")
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", e.Status)
	}

	if e.RequestID == "" {
		return msg
	}

	return fmt.Sprintf("(%s) %s", e.RequestID, msg)
}

// InvalidToken reports whether the API blamed the application token.
func (e *APIError) InvalidToken() bool {
	_, ok := e.BadInputs["token"]
	return ok
}

// InvalidUser reports whether the API blamed the user token.
func (e *APIError) InvalidUser() bool {
	_, ok := e.BadInputs["user"]
	return ok
}

func (e *APIError) hasMessage(substr string) bool {
	for _, m := range e.Messages {
		if strings.Contains(m, substr) {
			return true
		}
	}

	return false
}
