package domain

import "errors"

var (
	// Parse-time failures. Non-recoverable for the offending event.
	ErrEventFormat  = errors.New("malformed event data")
	ErrUnknownEnum  = errors.New("unknown venue or side")
	ErrNumericField = errors.New("invalid numeric field")

	// ErrRouting is returned when an intent carries a venue tag no executor
	// is registered for. Unreachable given the parser's enum contract, but
	// the router keeps a defensive default case.
	ErrRouting = errors.New("no executor for venue")

	// ErrMissingTokenMapping is returned when the token registry has no
	// address for the traded symbol on the configured chain. The DEX path
	// fails fast locally instead of letting the aggregator reject the quote.
	ErrMissingTokenMapping = errors.New("missing token mapping")

	// Venue-adapter I/O failures.
	ErrUnauthorized = errors.New("unauthorized")
	ErrDecode       = errors.New("malformed response body")
	ErrInvalidOrder = errors.New("invalid order parameters")

	ErrNotFound = errors.New("not found")
)
