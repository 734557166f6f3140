// Package swap provides the backing store and slot bookkeeping for pages
// evicted from physical memory.
package swap
