package memory

// Map describes the memory of one process
type Map struct {
	PID              int     `json:"pid"`
	TotalAllocated   int64   `json:"totalAllocated"`
	InPhysicalMemory int64   `json:"inPhysicalMemory"`
	InSwap           int64   `json:"inSwap"`
	Untouched        int64   `json:"untouched"`
	PageCount        int     `json:"pageCount"`
	Ranges           []Range `json:"ranges"`
}

// Info describes system wide memory usage
type Info struct {
	PhysicalSize   int64  `json:"physicalSize"`
	PageSize       int    `json:"pageSize"`
	TotalFrames    int    `json:"totalFrames"`
	FreeFrames     int    `json:"freeFrames"`
	UsedFrames     int    `json:"usedFrames"`
	PageFaults     uint64 `json:"pageFaults"`
	SwapIns        uint64 `json:"swapIns"`
	SwapOuts       uint64 `json:"swapOuts"`
	SwapSlots      int    `json:"swapSlots"`
	// SwapSlotsUsed counts bound slots, including those kept by pages swapped back in
	SwapSlotsUsed  int    `json:"swapSlotsUsed"`
	// TotalSwapUsage is the bytes of pages currently held only in swap
	TotalSwapUsage int64  `json:"totalSwapUsage"`
}
