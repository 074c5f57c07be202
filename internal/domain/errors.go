package domain

import "errors"

// Sentinel errors shared by services, repositories and controllers.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("user not authenticated")
	ErrInvalidInput  = errors.New("invalid input")
	ErrMissingFields = errors.New("missing required fields: to, eventTitle, eventDate, rsvpLink")
)
