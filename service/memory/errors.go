package memory

import "errors"

var (
	// ErrNotFound is returned for an unknown pid, page or range
	ErrNotFound = errors.New("memory: not found")
	// ErrResourceExhausted is returned when no frame, slot or address space is left
	ErrResourceExhausted = errors.New("memory: resource exhausted")
	// ErrIOFailure is returned when the swap store fails
	ErrIOFailure = errors.New("memory: swap i/o failure")
	// ErrInvalidState is returned when bookkeeping is inconsistent with the request
	ErrInvalidState = errors.New("memory: invalid state")
	// ErrInvalidArgument is returned for malformed sizes or addresses
	ErrInvalidArgument = errors.New("memory: invalid argument")
)
