// Package app wires the funding ledger services together and manages their
// lifecycle.
package app

import (
	"context"
	"fmt"

	"github.com/FundPool-Network/funding_ledger/internal/app/core/service"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
	"github.com/FundPool-Network/funding_ledger/internal/app/events"
	"github.com/FundPool-Network/funding_ledger/internal/app/services/accessgate"
	ledgersvc "github.com/FundPool-Network/funding_ledger/internal/app/services/ledger"
	registrysvc "github.com/FundPool-Network/funding_ledger/internal/app/services/registry"
	"github.com/FundPool-Network/funding_ledger/internal/app/storage"
	"github.com/FundPool-Network/funding_ledger/internal/app/storage/memory"
	"github.com/FundPool-Network/funding_ledger/internal/app/system"
	"github.com/FundPool-Network/funding_ledger/internal/custody"
	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Programs storage.ProgramStore
	Pool     storage.PoolStore
}

// Config carries the identities the application is anchored to.
type Config struct {
	Admin       identity.Address
	PoolAddress identity.Address
}

// Application ties the ledger services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	AccessGate *accessgate.Service
	Registry   *registrysvc.Service
	Ledger     *ledgersvc.Service
}

// New builds a fully initialised application with the provided stores and
// custody backend.
func New(stores Stores, backend custody.Backend, cfg Config, publisher events.Publisher, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if backend == nil {
		return nil, fmt.Errorf("custody backend is required")
	}
	if cfg.PoolAddress.IsZero() {
		return nil, fmt.Errorf("pool address is required")
	}

	mem := memory.New()
	if stores.Programs == nil {
		stores.Programs = mem
	}
	if stores.Pool == nil {
		stores.Pool = mem
	}
	if publisher == nil {
		publisher = events.Discard{}
	}

	manager := system.NewManager()

	gate, err := accessgate.New(cfg.Admin, stores.Programs, log)
	if err != nil {
		return nil, err
	}
	reg := registrysvc.New(gate, stores.Programs, publisher, log)
	led := ledgersvc.New(gate, reg, stores.Programs, stores.Pool, backend, cfg.PoolAddress, publisher, log)

	for _, d := range []service.Descriptor{gate.Describe(), reg.Describe(), led.Describe()} {
		if err := manager.Register(system.NoopService{ServiceName: d.Name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", d.Name, err)
		}
		log.WithField("layer", string(d.Layer)).Debugf("component %s ready", d.Name)
	}

	return &Application{
		manager:    manager,
		log:        log,
		AccessGate: gate,
		Registry:   reg,
		Ledger:     led,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
