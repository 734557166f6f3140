package vkernel

import "errors"

var (
	// ErrNotRunning is returned when the kernel has not been booted or was shut down
	ErrNotRunning = errors.New("kernel: not running")
	// ErrAlreadyRunning is returned when booting a running kernel
	ErrAlreadyRunning = errors.New("kernel: already running")
	// ErrDuplicateService is returned when a peripheral name is already registered
	ErrDuplicateService = errors.New("kernel: duplicate service")
	// ErrNotFound is returned for an unknown pid
	ErrNotFound = errors.New("kernel: not found")
)
