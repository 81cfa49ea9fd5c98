// Package services holds the business operations behind the HTTP API:
// accounts, event management, registration, export, checkout and meeting
// provisioning.
package services

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrNotApplicable = errors.New("not applicable")
	ErrUpstream      = errors.New("upstream failure")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalid       = errors.New("invalid input")
)

// ErrAlreadyRegistered is the Conflict returned for a second registration.
var ErrAlreadyRegistered = &Error{Kind: ErrConflict, Message: "You are already registered for this event."}

// Error carries a kind, a message fit for the API response and an
// optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func notFound(message string) *Error {
	return newError(ErrNotFound, message, nil)
}

// MessageOf returns the human message of err when it carries one.
func MessageOf(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return ""
}
