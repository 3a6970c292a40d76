package service

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalid       = errors.New("invalid")
	ErrNotConfigured = errors.New("provider not configured")
	ErrProvider      = errors.New("provider error")
)
