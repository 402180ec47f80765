package domain

import "errors"

// Sentinel errors for DNS error classification. The provider client and the
// reconciler wrap these so callers can handle error categories uniformly:
//
//	return fmt.Errorf("failed to update record: %w", domain.ErrProvider)
var (
	// ErrProvider indicates the DNS provider reported an unsuccessful
	// operation (success:false in the response envelope).
	ErrProvider = errors.New("dns provider error")

	// ErrNotFound indicates no matching record exists at the provider.
	// It is not fatal; it drives the create path.
	ErrNotFound = errors.New("dns record not found")

	// ErrBadCache indicates cached state failed to parse. Callers treat it
	// as a cache miss and rebuild from the provider.
	ErrBadCache = errors.New("malformed cache entry")

	// ErrInvalidInput indicates a malformed homename or record name,
	// rejected before any I/O.
	ErrInvalidInput = errors.New("invalid input")
)
