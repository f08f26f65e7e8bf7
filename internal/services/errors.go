// Package services holds the business logic of the upload catalog: user
// management, the upload flow, catalog queries and the audit event log.
// The sentinel errors below are shared across the package; handlers use
// errors.Is against them to pick the HTTP status for a failed request.
package services

import "errors"

// ErrValidation is returned when request input is malformed, such as an
// invalid email address or a period bound that does not parse as DD.MM.YYYY.
// Handlers should translate this into an HTTP 400 response.
var ErrValidation = errors.New("validation failed")

// ErrConflict is returned when an insert collides with existing state, such
// as creating a user with an email that is already registered or a file
// record whose filename is already taken. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when a referenced entity does not exist, for
// example a file record pointing at an unknown owner. Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
