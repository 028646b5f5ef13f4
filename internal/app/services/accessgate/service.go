// Package accessgate decides which callers may perform privileged operations.
// There is exactly one admin identity, fixed at construction; per-program
// authority belongs to the program's responsible party.
package accessgate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/FundPool-Network/funding_ledger/internal/app/core/service"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
	"github.com/FundPool-Network/funding_ledger/internal/app/storage"
	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// Service answers authorization questions for the registry and ledger.
type Service struct {
	admin    identity.Address
	programs storage.ProgramStore
	log      *logger.Logger
}

// New constructs an access gate for the given admin identity.
func New(admin identity.Address, programs storage.ProgramStore, log *logger.Logger) (*Service, error) {
	if admin.IsZero() {
		return nil, fmt.Errorf("admin identity is required")
	}
	if log == nil {
		log = logger.NewDefault("accessgate")
	}
	return &Service{admin: admin, programs: programs, log: log}, nil
}

// Admin returns the configured admin identity.
func (s *Service) Admin() identity.Address { return s.admin }

// Describe advertises the service placement.
func (s *Service) Describe() service.Descriptor {
	return service.Descriptor{
		Name:         "accessgate",
		Domain:       "funding",
		Layer:        service.LayerDomain,
		Capabilities: []string{"authorize"},
	}
}

// RequireAdmin rejects any caller other than the admin.
func (s *Service) RequireAdmin(caller identity.Address) error {
	if s.admin.Equal(caller) {
		return nil
	}
	s.log.WithField("caller", caller.String()).Warn("admin operation rejected")
	return &service.AccessDeniedError{
		Resource: "ledger",
		ID:       "admin",
		Caller:   caller.String(),
		Reason:   "caller is not the admin",
	}
}

// RequirePIC rejects any caller other than the program's responsible party.
// Unknown programs surface as not-found so callers cannot probe for ids.
func (s *Service) RequirePIC(ctx context.Context, caller identity.Address, programID int64) error {
	p, err := s.programs.GetProgram(ctx, programID)
	if err != nil {
		return err
	}
	if p.PIC.Equal(caller) {
		return nil
	}
	s.log.WithField("caller", caller.String()).Warnf("withdrawal rejected for program %d", programID)
	return &service.AccessDeniedError{
		Resource: "program",
		ID:       strconv.FormatInt(programID, 10),
		Caller:   caller.String(),
		Reason:   "caller is not the responsible party",
	}
}
