package swap

import "errors"

var (
	// ErrFull is returned when no swap slot is available
	ErrFull = errors.New("swap: no free slot")
	// ErrOutOfRange is returned for slot access beyond the store size
	ErrOutOfRange = errors.New("swap: slot out of range")
	// ErrClosed is returned when using a closed store
	ErrClosed = errors.New("swap: store closed")
)
