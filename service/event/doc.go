// Package event provides the kernel event bus.
package event
