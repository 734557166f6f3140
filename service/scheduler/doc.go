// Package scheduler decides dispatch order and advances one process per tick.
// Two strategies are provided: round-robin (FIFO ready queue) and priority
// (ready queue ordered by ascending priority, ties by enqueue order).
package scheduler
