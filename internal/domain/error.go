package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("user is not an admin of the target chat")
	ErrNoSession       = errors.New("no wizard session in progress")
	ErrWrongStep       = errors.New("input does not match the current wizard step")
)
