// Package common defines shared sentinel errors used across the message.ly
// core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorValidation = errors.New("validation error")
	ErrorInternal   = errors.New("internal error")
)
