// Package services holds the business logic of the content studio: accounts
// and credentials, the generation workflow, sessions, content history,
// preferences and profile statistics.
//
// This file centralizes the error model. Every error a service returns for a
// predictable case is an *Error whose Kind is one of the sentinels below, so
// handlers can map it to an HTTP status with errors.Is and show Msg to the
// user unchanged.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-content-studio/internal/llm"
	"github.com/tbourn/go-content-studio/internal/repo"
)

// Error kinds.
var (
	// ErrValidation marks malformed input: bad email shape, short password,
	// empty prompt, unknown enum value.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a uniqueness violation such as a registered email.
	ErrConflict = errors.New("conflict")

	// ErrAuth marks rejected credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrNotFound marks a missing row or one owned by another user.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks a completion endpoint that answered with an error.
	ErrUpstream = errors.New("upstream error")

	// ErrTransport marks a completion endpoint that could not be reached.
	ErrTransport = errors.New("transport error")

	// ErrNotImplemented marks an operation that exists but does nothing yet.
	ErrNotImplemented = errors.New("not implemented")
)

// Error is a classified service failure. Msg is safe to show to users.
type Error struct {
	Kind error
	Msg  string
	Err  error // optional cause
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ErrInvalidCredentials is returned by SignIn for an unknown email and for a
// wrong password alike.
var ErrInvalidCredentials = &Error{Kind: ErrAuth, Msg: "invalid email or password"}

// notFound turns a repository miss into a NotFound error naming what.
// Other errors pass through.
func notFound(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return &Error{Kind: ErrNotFound, Msg: what + " not found", Err: err}
	}
	return err
}

// fromLLM classifies an llm client error.
func fromLLM(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, llm.ErrUpstream):
		return &Error{Kind: ErrUpstream, Msg: "content generation failed", Err: err}
	case errors.Is(err, llm.ErrTransport):
		return &Error{Kind: ErrTransport, Msg: "content service unreachable", Err: err}
	}
	return err
}
