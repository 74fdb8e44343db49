package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultMachineDuration is used when a definition does not set a duration.
const DefaultMachineDuration = 60

// MachineDefinition is the per-challenge machine template.
type MachineDefinition struct {
	ChallengeID     int64     `json:"challenge_id" db:"challenge_id"`
	Slug            string    `json:"slug" db:"slug"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Config          string    `json:"config" db:"config"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Duration returns the machine lifetime granted on start.
func (d *MachineDefinition) Duration() time.Duration {
	if d.DurationMinutes <= 0 {
		return DefaultMachineDuration * time.Minute
	}
	return time.Duration(d.DurationMinutes) * time.Minute
}

// HasConfig reports whether the definition carries an orchestration config.
func (d *MachineDefinition) HasConfig() bool {
	return d.Config != ""
}

// MachineConfig is the decoded form of MachineDefinition.Config.
type MachineConfig struct {
	LaunchType     string          `json:"launchType,omitempty"`
	TaskDefinition json.RawMessage `json:"taskDefinition"`
	Networks       Networks        `json:"networks"`
}

// Networks holds the security group rules requested by a definition.
type Networks struct {
	Inbound  []Rule `json:"inbound" yaml:"inbound"`
	Outbound []Rule `json:"outbound" yaml:"outbound"`
}

// Rule is a single ingress or egress permission.
type Rule struct {
	Protocol    string   `json:"protocol" yaml:"protocol"`
	FromPort    int32    `json:"fromPort" yaml:"fromPort"`
	ToPort      int32    `json:"toPort" yaml:"toPort"`
	CIDRs       []string `json:"cidrs" yaml:"cidrs"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// ParseMachineConfig decodes a definition config and applies defaults.
func ParseMachineConfig(raw string) (*MachineConfig, error) {
	var cfg MachineConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("decode machine config: %w", err)
	}
	if len(cfg.TaskDefinition) == 0 {
		return nil, fmt.Errorf("decode machine config: taskDefinition is required")
	}
	if cfg.LaunchType == "" {
		cfg.LaunchType = LaunchTypeFargate
	}
	return &cfg, nil
}

// NetworkConfig is the awsvpc configuration handed to the orchestrator.
type NetworkConfig struct {
	Subnets        []string `json:"subnets"`
	SecurityGroups []string `json:"securityGroups"`
	AssignPublicIP bool     `json:"assignPublicIp"`
}

// NormalizeMachineConfig validates raw and returns its canonical
// indented form, which is what gets stored and compared on update.
func NormalizeMachineConfig(raw string) (string, *MachineConfig, error) {
	cfg, err := ParseMachineConfig(raw)
	if err != nil {
		return "", nil, err
	}
	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return "", nil, fmt.Errorf("decode machine config: %w", err)
	}
	out, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode machine config: %w", err)
	}
	return string(out), cfg, nil
}
