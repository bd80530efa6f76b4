package domain

import "errors"

// Error kinds surfaced by the listing pipelines. Handlers map these to HTTP
// statuses with errors.Is; everything else in the module wraps one of them.
var (
	// ErrRateLimitExceeded means the organisation has exhausted its call
	// budget for the endpoint. No data is fetched and no usage is recorded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrUnauthorized means the consent is unknown, revoked or expired.
	ErrUnauthorized = errors.New("consent is not valid")

	// ErrForbidden means the consent is valid but does not carry the
	// permission required by the operation.
	ErrForbidden = errors.New("consent does not grant permission")

	// ErrInvalidInput covers malformed request values: bad account type,
	// out-of-range page or page size, broken identifiers.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means a requested resource does not exist or is not
	// visible to the consent.
	ErrNotFound = errors.New("resource not found")

	// ErrUpstreamFailure covers provider fetch/count errors and any failure
	// past the gate stages. The pipeline does not retry.
	ErrUpstreamFailure = errors.New("upstream failure")
)
