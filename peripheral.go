package vkernel

import "context"

// Peripheral is a named collaborator registered with the kernel, for example
// a file system or a shell.
type Peripheral interface {
	Name() string
}

// Ticker is implemented by peripherals that advance with the kernel clock
type Ticker interface {
	OnTick(ctx context.Context, tick uint64) error
}
