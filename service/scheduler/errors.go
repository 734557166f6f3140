package scheduler

import "errors"

var (
	// ErrNotFound is returned when the pid is not tracked by the scheduler.
	ErrNotFound = errors.New("scheduler: process not found")

	// ErrAlreadyExists is returned when adding a pid that is already tracked.
	ErrAlreadyExists = errors.New("scheduler: process already exists")

	// ErrInvalidState is returned when adding a nil or zombie process.
	ErrInvalidState = errors.New("scheduler: invalid process state")

	// ErrUnknownKind is returned by New for unsupported strategies.
	ErrUnknownKind = errors.New("scheduler: unknown kind")
)
