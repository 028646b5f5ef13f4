// Package registry manages the funding program catalogue and its lifecycle.
package registry

import (
	"context"
	"strconv"

	"github.com/FundPool-Network/funding_ledger/internal/app/core/service"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/program"
	"github.com/FundPool-Network/funding_ledger/internal/app/events"
	"github.com/FundPool-Network/funding_ledger/internal/app/services/accessgate"
	"github.com/FundPool-Network/funding_ledger/internal/app/storage"
	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// Service manages program registration and lifecycle transitions.
type Service struct {
	gate      *accessgate.Service
	store     storage.ProgramStore
	publisher events.Publisher
	log       *logger.Logger
}

// New constructs a program registry.
func New(gate *accessgate.Service, store storage.ProgramStore, publisher events.Publisher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("registry")
	}
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{gate: gate, store: store, publisher: publisher, log: log}
}

// Describe advertises the service placement.
func (s *Service) Describe() service.Descriptor {
	return service.Descriptor{
		Name:         "registry",
		Domain:       "funding",
		Layer:        service.LayerDomain,
		Capabilities: []string{"create", "update", "list"},
	}
}

// Create registers a new program. Admin only.
func (s *Service) Create(ctx context.Context, caller identity.Address, name, description string, target int64, pic identity.Address) (program.Program, error) {
	if err := s.gate.RequireAdmin(caller); err != nil {
		return program.Program{}, err
	}
	if err := validateDetails(name, description, pic); err != nil {
		return program.Program{}, err
	}
	if target <= 0 {
		return program.Program{}, service.NewValidationError("target", "must be positive")
	}

	created, err := s.store.CreateProgram(ctx, program.Program{
		Name:        name,
		Description: description,
		Target:      target,
		PIC:         identity.Normalize(pic.String()),
		Status:      program.StatusRegistered,
	})
	if err != nil {
		return program.Program{}, err
	}

	s.log.Infof("program %d registered with target %d", created.ID, created.Target)
	s.publisher.Publish(ctx, events.ProgramCreated{
		ProgramID: created.ID,
		Name:      created.Name,
		Target:    created.Target,
		PIC:       created.PIC,
	})
	return created, nil
}

// Update overwrites a registered program's details. Admin only. The incoming
// fields pass the same validation as on creation; the target and status are
// untouched and allocated programs are frozen.
func (s *Service) Update(ctx context.Context, caller identity.Address, id int64, name, description string, pic identity.Address) (program.Program, error) {
	if err := s.gate.RequireAdmin(caller); err != nil {
		return program.Program{}, err
	}
	if err := validateDetails(name, description, pic); err != nil {
		return program.Program{}, err
	}

	existing, err := s.store.GetProgram(ctx, id)
	if err != nil {
		return program.Program{}, err
	}
	if existing.Status != program.StatusRegistered {
		return program.Program{}, service.NewStateError("program", strconv.FormatInt(id, 10), string(existing.Status), string(program.StatusRegistered))
	}

	existing.Name = name
	existing.Description = description
	existing.PIC = identity.Normalize(pic.String())

	updated, err := s.store.UpdateProgram(ctx, existing)
	if err != nil {
		return program.Program{}, err
	}

	s.log.Infof("program %d updated", id)
	s.publisher.Publish(ctx, events.ProgramUpdated{
		ProgramID:   updated.ID,
		Name:        updated.Name,
		Description: updated.Description,
		PIC:         updated.PIC,
	})
	return updated, nil
}

// Get retrieves a program by id.
func (s *Service) Get(ctx context.Context, id int64) (program.Program, error) {
	return s.store.GetProgram(ctx, id)
}

// List returns all programs in creation order.
func (s *Service) List(ctx context.Context) ([]program.Program, error) {
	return s.store.ListPrograms(ctx)
}

// MarkAllocated transitions a registered program to allocated, reserving its
// full target. amount must equal the target; partial allocation does not
// exist. Called by the ledger under its write lock.
func (s *Service) MarkAllocated(ctx context.Context, id int64, amount int64) (program.Program, error) {
	p, err := s.store.GetProgram(ctx, id)
	if err != nil {
		return program.Program{}, err
	}
	if p.Status != program.StatusRegistered {
		return program.Program{}, service.NewStateError("program", strconv.FormatInt(id, 10), string(p.Status), string(program.StatusRegistered))
	}
	if amount != p.Target {
		return program.Program{}, service.NewValidationError("amount", "allocation must cover the full target")
	}

	p.Status = program.StatusAllocated
	p.Allocated = p.Target
	return s.store.UpdateProgram(ctx, p)
}

// AdjustAllocated moves a program's remaining allocation by delta. The result
// stays within [0, target]; only allocated programs carry an allocation.
// Called by the ledger under its write lock.
func (s *Service) AdjustAllocated(ctx context.Context, id int64, delta int64) (program.Program, error) {
	p, err := s.store.GetProgram(ctx, id)
	if err != nil {
		return program.Program{}, err
	}
	if p.Status != program.StatusAllocated {
		return program.Program{}, service.NewStateError("program", strconv.FormatInt(id, 10), string(p.Status), string(program.StatusAllocated))
	}

	next := p.Allocated + delta
	if next < 0 {
		return program.Program{}, service.NewInsufficientFundsError(-delta, p.Allocated)
	}
	if next > p.Target {
		return program.Program{}, service.NewValidationError("delta", "allocation cannot exceed the target")
	}

	p.Allocated = next
	return s.store.UpdateProgram(ctx, p)
}

func validateDetails(name, description string, pic identity.Address) error {
	if name == "" {
		return service.RequiredError("name")
	}
	if description == "" {
		return service.RequiredError("description")
	}
	if pic.IsZero() {
		return service.RequiredError("pic")
	}
	return nil
}
