package memory

// baseAddress is where the first range of every process starts; lower
// addresses are reserved for the kernel.
const baseAddress = 0x1000

// Range is a contiguous virtual address range owned by one process
type Range struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Size  int64 `json:"size"`
}

// Contains reports whether addr falls inside the range
func (r Range) Contains(addr int64) bool {
	return r.Start <= addr && addr < r.End
}

func alignUp(addr int64, pageSize int) int64 {
	size := int64(pageSize)
	if rem := addr % size; rem != 0 {
		addr += size - rem
	}
	return addr
}

// pages returns the first and one past the last vpn covered by the range
func (r Range) pages(pageSize int) (int, int) {
	size := int64(pageSize)
	return int(r.Start / size), int((r.End + size - 1) / size)
}
