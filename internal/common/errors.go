// Package common defines shared constants and sentinel errors used across
// the repository, service and transport layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Identity errors.
	ErrDuplicateIdentity  = errors.New("duplicate identity")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUpstreamIdentity   = errors.New("upstream identity failure")

	// Authorization errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// Token errors. Both also match ErrorUnauthorized.
	ErrInvalidToken = &tokenError{msg: "invalid token"}
	ErrTokenExpired = &tokenError{msg: "token expired"}
)

type tokenError struct{ msg string }

func (e *tokenError) Error() string { return e.msg }

func (e *tokenError) Unwrap() error { return ErrorUnauthorized }
