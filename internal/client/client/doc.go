// Package client talks to the TaskKeeper REST API.
//
// HTTPClient implements Client over net/http. It keeps the access token set
// with SetToken and sends it as a bearer token on every guarded call.
//
// # Error Handling
//
// Non-2xx responses come back as *APIError, which unwraps to one of the
// sentinel errors (ErrUnauthorized, ErrNotFound, ErrConflict, ErrValidation,
// ErrUnavailable) so callers can use errors.Is. Transport failures where the
// server could not be reached also match ErrUnavailable.
package client
