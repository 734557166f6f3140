// Package vkernel simulates the execution core of an operating system
// kernel: processes are dispatched onto a virtual CPU one quantum per tick
// while a virtual memory manager provides demand paging with LRU eviction
// and swap.
//
// End users interact with the kernel through the Service facade:
//
//	srv, _ := vkernel.New()
//	kernel := srv.Kernel()
//	_ = kernel.Boot(ctx)
//	p, _ := kernel.Spawn("editor", "root")
//	r, _ := kernel.Memory().Allocate(p.PID, 8192)
//	_ = kernel.Memory().Write(ctx, p.PID, r.Start, []byte("hello"))
//	_ = kernel.Tick(ctx)
//	_ = kernel.Shutdown(ctx)
package vkernel
