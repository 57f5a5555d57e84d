package services

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password
	// so login failures are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailNotFound     = errors.New("email not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidResetToken = errors.New("invalid or expired token")
	ErrResetDispatch     = errors.New("failed to dispatch reset link")
)
