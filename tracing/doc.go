// Package tracing wraps OpenTelemetry so kernel components can emit spans
// (kernel.tick, memory.pageFault, memory.swapOut) without importing the
// upstream packages directly. Until Init is called spans are no-ops.
package tracing
