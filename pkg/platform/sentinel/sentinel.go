package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and connectors return
// these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrConflict: a uniqueness invariant would be violated
// - ErrCancelled: the user abandoned an in-flight handshake
// - ErrUnavailable: the storage medium or wallet authenticator is unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrCancelled   = errors.New("cancelled")
	ErrUnavailable = errors.New("unavailable")
)
