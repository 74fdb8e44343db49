package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/machines/internal/model"
)

// DB defines the database operations used by core services.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MachineStore persists machine records. Lookups that find nothing return
// a nil record and a nil error.
type MachineStore interface {
	CountActiveByUser(ctx context.Context, userID int64, now time.Time) (int, error)
	// InsertGuarded inserts m unless the user already holds limit active
	// machines. It reports false when the insert was refused.
	InsertGuarded(ctx context.Context, m *model.Machine, limit int) (bool, error)
	Insert(ctx context.Context, m *model.Machine) error
	FindRunning(ctx context.Context, userID, challengeID int64) (*model.Machine, error)
	ExistsForPair(ctx context.Context, userID, challengeID int64) (bool, error)
	ListRunning(ctx context.Context, filter model.MachineFilter) ([]model.Machine, error)
	ListRunningByIDs(ctx context.Context, ids []string) ([]model.Machine, error)
	ListExpired(ctx context.Context, now time.Time) ([]model.Machine, error)
	ListByStatus(ctx context.Context, status model.MachineStatus) ([]model.Machine, error)
	UpdateDetail(ctx context.Context, id string, detail model.Detail) error
	UpdateStatus(ctx context.Context, id string, status model.MachineStatus, expiresAt *time.Time) error
	List(ctx context.Context, filter model.MachineFilter, params model.ListParams) ([]model.Machine, bool, error)
}

// DefinitionStore persists machine definitions.
type DefinitionStore interface {
	Get(ctx context.Context, challengeID int64) (*model.MachineDefinition, error)
	Create(ctx context.Context, def *model.MachineDefinition) error
	Update(ctx context.Context, def *model.MachineDefinition) error
	Delete(ctx context.Context, challengeID int64) error
	List(ctx context.Context) ([]model.MachineDefinition, error)
}

// Orchestrator is the container platform the machines run on.
type Orchestrator interface {
	RegisterTaskDefinition(ctx context.Context, slug string, taskDefinition json.RawMessage) error
	DeregisterAllRevisions(ctx context.Context, slug string) error
	RunTask(ctx context.Context, slug string, cfg *model.MachineConfig, network *model.NetworkConfig) (model.Detail, error)
	DescribeTask(ctx context.Context, taskArn string) (model.Detail, error)
	StopTask(ctx context.Context, taskArn string) error
	StopAllByFamily(ctx context.Context, slug string) error
	DeleteSecurityGroups(ctx context.Context, ids []string) error
}

// NetworkProvisioner allocates an isolated network boundary for a machine.
type NetworkProvisioner interface {
	Allocate(ctx context.Context, slug string, networks model.Networks) (*model.NetworkConfig, error)
}

// StatusCache remembers machines recently confirmed running.
type StatusCache interface {
	Get(ctx context.Context, machineID string) (model.Detail, bool, error)
	Set(ctx context.Context, machineID string, detail model.Detail, ttl time.Duration) error
}

// EventPublisher fans machine lifecycle events out to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event model.MachineEvent)
}
