// Package apperr defines the domain error taxonomy shared by the service,
// HTTP and WebSocket layers.
package apperr

import (
	"errors"

	"wishlist/internal/models"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrValidation          = errors.New("validation error")
	ErrProtocol            = errors.New("protocol error")
	ErrRateLimited         = errors.New("rate limited")
	ErrReservationConflict = errors.New("reservation conflict")
)

// Error is a domain error with a user-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// NotFound returns an ErrNotFound error with msg.
func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

// Forbidden returns an ErrForbidden error with msg.
func Forbidden(msg string) error { return &Error{Kind: ErrForbidden, Message: msg} }

// Unauthorized returns an ErrUnauthorized error with msg.
func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }

// Validation returns an ErrValidation error with msg.
func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

// Protocol returns an ErrProtocol error with msg.
func Protocol(msg string) error { return &Error{Kind: ErrProtocol, Message: msg} }

// RateLimited returns an ErrRateLimited error with msg.
func RateLimited(msg string) error { return &Error{Kind: ErrRateLimited, Message: msg} }

// ConflictError reports a rejected claim transition together with the
// authoritative item state so the client can reconcile without re-fetching.
type ConflictError struct {
	Reason  string
	Current *models.ItemView
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return ErrReservationConflict }

// Message extracts the user-facing message of err, or fallback when err is
// not a domain error.
func Message(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Error()
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return fallback
}
