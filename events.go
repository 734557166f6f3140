package vkernel

// Kernel event types
const (
	EventBoot              = "KERNEL_BOOT"
	EventTick              = "KERNEL_TICK"
	EventShutdown          = "KERNEL_SHUTDOWN"
	EventServiceRegistered = "SERVICE_REGISTERED"
	EventProcessExit       = "PROCESS_EXIT"
)

// TickData is the payload of KERNEL_TICK
type TickData struct {
	Tick uint64 `json:"tick"`
}

// BootData is the payload of KERNEL_BOOT
type BootData struct {
	BootID string `json:"bootId"`
}

// ServiceData is the payload of SERVICE_REGISTERED
type ServiceData struct {
	Name string `json:"name"`
}

// ExitData is the payload of PROCESS_EXIT
type ExitData struct {
	PID        int    `json:"pid"`
	Name       string `json:"name"`
	ExitReason string `json:"exitReason,omitempty"`
	CPUTime    int    `json:"cpuTime"`
}
