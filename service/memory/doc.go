// Package memory implements per-process virtual address spaces with demand
// paging over a fixed pool of physical frames.
//
// Every page starts non-present. The first access faults the page in, either
// zero filled or from its swap slot. When no frame is free the least recently
// used resident page system wide is evicted; dirty pages are written to swap
// first. Written bytes are kept in real frame and slot storage, so a read
// always returns the most recent successful write.
package memory
