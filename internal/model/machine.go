package model

import "time"

// Machine is one provisioning attempt of a challenge machine for a user.
// Records are never deleted; stopped machines remain as an audit trail.
type Machine struct {
	ID          string        `json:"id" db:"id"`
	UserID      int64         `json:"user_id" db:"user_id"`
	ChallengeID int64         `json:"challenge_id" db:"challenge_id"`
	TaskArn     string        `json:"-" db:"task_arn"`
	Status      MachineStatus `json:"status" db:"status"`
	StartedAt   time.Time     `json:"started_at" db:"started_at"`
	ExpiresAt   time.Time     `json:"expires_at" db:"expires_at"`
	Detail      Detail        `json:"detail" db:"detail"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// Active reports whether the machine counts against the user's limit at now.
func (m *Machine) Active(now time.Time) bool {
	return m.Status == MachineRunning && m.ExpiresAt.After(now)
}

// MachineFilter narrows machine queries. Nil fields match everything.
type MachineFilter struct {
	UserID      *int64
	ChallengeID *int64
	Status      *MachineStatus
}

// ListParams is the cursor pagination input for machine listings.
type ListParams struct {
	Limit  int
	Cursor string
}
