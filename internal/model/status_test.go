package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineStatusValues(t *testing.T) {
	assert.Equal(t, MachineStatus(0), MachineStopped)
	assert.Equal(t, MachineStatus(1), MachineRunning)
	assert.Equal(t, MachineStatus(2), MachineStoppedPendingCleanup)
	assert.Equal(t, "running", MachineRunning.String())
	assert.Equal(t, "unknown(7)", MachineStatus(7).String())
}

func TestMachine_Active(t *testing.T) {
	now := time.Now()
	m := &Machine{Status: MachineRunning, ExpiresAt: now.Add(time.Minute)}
	assert.True(t, m.Active(now))

	m.ExpiresAt = now.Add(-time.Second)
	assert.False(t, m.Active(now))

	m.ExpiresAt = now.Add(time.Minute)
	m.Status = MachineStoppedPendingCleanup
	assert.False(t, m.Active(now))
}

func TestMachineDefinition_Duration(t *testing.T) {
	assert.Equal(t, 60*time.Minute, (&MachineDefinition{}).Duration())
	assert.Equal(t, 15*time.Minute, (&MachineDefinition{DurationMinutes: 15}).Duration())
}

func TestParseMachineConfig(t *testing.T) {
	cfg, err := ParseMachineConfig(`{"taskDefinition": {"cpu": "256"}, "networks": {"inbound": [{"protocol": "tcp", "fromPort": 22, "toPort": 22, "cidrs": ["0.0.0.0/0"]}]}}`)
	require.NoError(t, err)
	assert.Equal(t, LaunchTypeFargate, cfg.LaunchType)
	require.Len(t, cfg.Networks.Inbound, 1)
	assert.Equal(t, int32(22), cfg.Networks.Inbound[0].FromPort)
	assert.Empty(t, cfg.Networks.Outbound)

	_, err = ParseMachineConfig(`{"launchType": "EXTERNAL"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taskDefinition is required")

	_, err = ParseMachineConfig(`not json`)
	require.Error(t, err)
}

func TestNormalizeMachineConfig_IsStable(t *testing.T) {
	raw := `{"taskDefinition":{"cpu":"256","memory":"512"},"launchType":"FARGATE"}`

	first, cfg, err := NormalizeMachineConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, LaunchTypeFargate, cfg.LaunchType)

	second, _, err := NormalizeMachineConfig(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	again, _, err := NormalizeMachineConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}
