package submit

import (
	"errors"
	"fmt"
	"strings"
)

// Terminal outcomes. Retrying these cannot change the answer, so the
// client stops immediately and surfaces the server's detail verbatim.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrDuplicateSKU  = errors.New("duplicate_sku")
	ErrNotConfigured = errors.New("service api key not configured")
)

// CreatedProduct echoes the identifiers the server assigned.
type CreatedProduct struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	SKU   string `json:"sku"`
	Title string `json:"title"`
}

// Result is a successful submission: the created product plus how many
// attempts it took.
type Result struct {
	Product  CreatedProduct
	Attempts int
}

// ServerValidationError is a 400 from the endpoint: the payload shape
// was rejected server-side. Messages are the server's own words.
type ServerValidationError struct {
	Messages []string
}

func (e *ServerValidationError) Error() string {
	return "server validation failed: " + strings.Join(e.Messages, "; ")
}

// TransientError is a retryable failure: a network error, a timeout, or
// an unexpected status (5xx). Status is zero when the request never got
// a response.
type TransientError struct {
	Status int
	Detail string
	Cause  error
}

func (e *TransientError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("transient submission failure: %v", e.Cause)
	case e.Detail != "":
		return fmt.Sprintf("transient submission failure: HTTP %d: %s", e.Status, e.Detail)
	default:
		return fmt.Sprintf("transient submission failure: HTTP %d", e.Status)
	}
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}
