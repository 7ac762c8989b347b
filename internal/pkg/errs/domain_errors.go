package errs

import "errors"

// Domain-specific sentinel errors for the publish pipeline
var (
	// Book errors
	ErrBookNotFound = errors.New("book not found")

	// Mapping errors
	ErrInvalidPrice  = errors.New("invalid price")
	ErrMissingImages = errors.New("book must have at least one image")
	ErrMissingField  = errors.New("missing required field")

	// Marketplace errors
	ErrUnknownMarketplace = errors.New("unknown marketplace")

	// Upstream errors
	ErrNoValidToken       = errors.New("no valid access token")
	ErrVerificationFailed = errors.New("offer verification failed")
	ErrOfferAlreadyExists = errors.New("offer entity already exists")

	// Publish errors
	ErrValidationFailed   = errors.New("payload validation failed")
	ErrManualIntervention = errors.New("manual intervention required")

	// Policy errors
	ErrPolicyNotConfigured = errors.New("listing policies not configured")
)
