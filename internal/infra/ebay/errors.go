package ebay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError carries one non-2xx upstream response. HTTP-level failures
// are ordinary errors here; the raw body is retained because upstream
// messages are frequently too vague to act on without it.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream returned %d", e.StatusCode)
}

// IsConflict reports an HTTP 409, which on publish means the offer is
// already live.
func (e *APIError) IsConflict() bool {
	return e.StatusCode == 409
}

// IsAlreadyExists matches the uniqueness-violation message the upstream
// returns when a second offer is created for the same SKU+marketplace.
func (e *APIError) IsAlreadyExists() bool {
	return strings.Contains(strings.ToLower(e.Message), "already exists")
}

// errorBody is the upstream's error envelope.
type errorBody struct {
	Errors []struct {
		ErrorID    int    `json:"errorId"`
		Message    string `json:"message"`
		Parameters []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"parameters"`
	} `json:"errors"`
	Warnings []struct {
		Message    string `json:"message"`
		Parameters []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"parameters"`
	} `json:"warnings"`
	ListingID string `json:"listingId"`
}

// OfferIDFromBody digs an offerId out of the error envelope's parameter
// list. Returns "" when the body does not carry one.
func (e *APIError) OfferIDFromBody() string {
	var body errorBody
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	for _, ue := range body.Errors {
		for _, p := range ue.Parameters {
			if strings.EqualFold(p.Name, "offerId") {
				return p.Value
			}
		}
	}
	return ""
}

// ListingIDFromBody extracts a listing id from a publish-conflict body,
// checking the top-level field first and then the warnings parameters.
func (e *APIError) ListingIDFromBody() string {
	var body errorBody
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	if body.ListingID != "" {
		return body.ListingID
	}
	for _, w := range body.Warnings {
		for _, p := range w.Parameters {
			if strings.EqualFold(p.Name, "listingId") {
				return p.Value
			}
		}
	}
	return ""
}

// AsAPIError unwraps err to an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func firstErrorMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if len(body.Errors) > 0 {
		return body.Errors[0].Message
	}
	return ""
}
