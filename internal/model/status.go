package model

import "fmt"

// MachineStatus is the persisted lifecycle state of a machine record.
type MachineStatus int16

const (
	MachineStopped MachineStatus = 0
	MachineRunning MachineStatus = 1
	// MachineStoppedPendingCleanup means the task was stopped but its
	// security groups have not been deleted yet.
	MachineStoppedPendingCleanup MachineStatus = 2
)

func (s MachineStatus) String() string {
	switch s {
	case MachineStopped:
		return "stopped"
	case MachineRunning:
		return "running"
	case MachineStoppedPendingCleanup:
		return "stopped_pending_cleanup"
	default:
		return fmt.Sprintf("unknown(%d)", int16(s))
	}
}

// Orchestrator task states and launch types we act on.
const (
	TaskStatusRunning = "RUNNING"
	TaskStatusStopped = "STOPPED"

	LaunchTypeFargate  = "FARGATE"
	LaunchTypeExternal = "EXTERNAL"
)
