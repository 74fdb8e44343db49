package model

import "time"

// Machine lifecycle event types.
const (
	EventMachineStarted    = "started"
	EventMachineTerminated = "terminated"
	EventMachineCleaned    = "cleaned"
)

// MachineEvent is published whenever a machine changes lifecycle state.
type MachineEvent struct {
	Type        string    `json:"type"`
	MachineID   string    `json:"machine_id"`
	UserID      int64     `json:"user_id"`
	ChallengeID int64     `json:"challenge_id"`
	At          time.Time `json:"at"`
}

// Principal is the authenticated caller of a machine operation.
type Principal struct {
	UserID int64
	Admin  bool
}
