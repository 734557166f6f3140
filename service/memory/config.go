package memory

import (
	"errors"
	"fmt"
)

const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

// Config sizes the memory manager, all values in bytes
type Config struct {
	PhysicalSize int64 `json:"physicalSize" yaml:"physicalSize"`
	PageSize     int   `json:"pageSize" yaml:"pageSize"`
	SwapSize     int64 `json:"swapSize" yaml:"swapSize"`
	// VirtualSize caps the address space of a single process
	VirtualSize int64 `json:"virtualSize" yaml:"virtualSize"`
}

// DefaultConfig returns a 64MiB machine with 4KiB pages and 128MiB of swap
func DefaultConfig() Config {
	return Config{
		PhysicalSize: 64 * MiB,
		PageSize:     4 * KiB,
		SwapSize:     128 * MiB,
		VirtualSize:  4 * GiB,
	}
}

// Frames returns the number of physical frames
func (c Config) Frames() int {
	if c.PageSize <= 0 {
		return 0
	}
	return int(c.PhysicalSize / int64(c.PageSize))
}

// Validate checks the configuration
func (c Config) Validate() error {
	var errs []error
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page size must be positive: %v", c.PageSize))
	} else {
		if c.PhysicalSize < int64(c.PageSize) {
			errs = append(errs, fmt.Errorf("physical size %v smaller than a page", c.PhysicalSize))
		}
		if c.VirtualSize < int64(c.PageSize) {
			errs = append(errs, fmt.Errorf("virtual size %v smaller than a page", c.VirtualSize))
		}
	}
	if c.SwapSize < 0 {
		errs = append(errs, fmt.Errorf("swap size must not be negative: %v", c.SwapSize))
	}
	return errors.Join(errs...)
}
