package core

import "github.com/rs/zerolog"

// Deps are the collaborators the machine services are built from.
type Deps struct {
	DB           DB
	Machines     MachineStore
	Definitions  DefinitionStore
	Orchestrator Orchestrator
	Network      NetworkProvisioner
	Cache        StatusCache
	Events       EventPublisher
	Logger       zerolog.Logger
}

type Services struct {
	Machine    *MachineService
	Definition *DefinitionService
	Gate       *AccessGate
	APIKey     *APIKeyService
}

func NewServices(d Deps) *Services {
	machines := NewMachineService(d.Machines, d.Definitions, d.Orchestrator, d.Network, d.Cache, d.Events, d.Logger)
	return &Services{
		Machine:    machines,
		Definition: NewDefinitionService(d.Definitions, d.Orchestrator, machines, d.Logger),
		Gate:       NewAccessGate(d.DB),
		APIKey:     NewAPIKeyService(d.DB),
	}
}
