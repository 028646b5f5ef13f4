// Package ledger implements the pooled funding ledger: deposits into the
// pool, all-or-nothing allocation against program targets, and partial
// withdrawals with an append-only audit history.
package ledger

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/FundPool-Network/funding_ledger/internal/app/core/service"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/program"
	"github.com/FundPool-Network/funding_ledger/internal/app/events"
	"github.com/FundPool-Network/funding_ledger/internal/app/metrics"
	"github.com/FundPool-Network/funding_ledger/internal/app/services/accessgate"
	"github.com/FundPool-Network/funding_ledger/internal/app/services/registry"
	"github.com/FundPool-Network/funding_ledger/internal/app/storage"
	"github.com/FundPool-Network/funding_ledger/internal/custody"
	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// Service is the funding ledger. All mutating operations serialize on one
// mutex so the pool totals and program allocations never interleave; reads
// go straight to the stores, which snapshot.
type Service struct {
	gate      *accessgate.Service
	registry  *registry.Service
	programs  storage.ProgramStore
	pool      storage.PoolStore
	backend   custody.Backend
	poolAddr  identity.Address
	publisher events.Publisher
	log       *logger.Logger

	mu sync.Mutex
}

// New constructs the funding ledger.
func New(gate *accessgate.Service, reg *registry.Service, programs storage.ProgramStore, pool storage.PoolStore, backend custody.Backend, poolAddr identity.Address, publisher events.Publisher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("ledger")
	}
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{
		gate:      gate,
		registry:  reg,
		programs:  programs,
		pool:      pool,
		backend:   backend,
		poolAddr:  identity.Normalize(poolAddr.String()),
		publisher: publisher,
		log:       log,
	}
}

// Describe advertises the service placement.
func (s *Service) Describe() service.Descriptor {
	return service.Descriptor{
		Name:         "ledger",
		Domain:       "funding",
		Layer:        service.LayerCustody,
		Capabilities: []string{"deposit", "allocate", "withdraw"},
	}
}

// Deposit pulls amount from the caller into the pool and records it in the
// managed fund total. Any identified caller may deposit. A declined pull
// leaves the accounting unchanged.
func (s *Service) Deposit(ctx context.Context, caller identity.Address, amount int64) (storage.PoolTotals, error) {
	if caller.IsZero() {
		return storage.PoolTotals{}, service.RequiredError("caller")
	}
	if amount <= 0 {
		return storage.PoolTotals{}, service.NewValidationError("amount", "must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.TransferIn(ctx, caller, amount); err != nil {
		s.log.WithError(err).Warnf("deposit of %d from %s failed", amount, caller)
		return storage.PoolTotals{}, service.NewTransferError("in", amount, err)
	}

	totals, err := s.pool.GetPoolTotals(ctx)
	if err != nil {
		return storage.PoolTotals{}, err
	}
	totals.TotalManagedFund += amount
	saved, err := s.pool.SavePoolTotals(ctx, totals)
	if err != nil {
		return storage.PoolTotals{}, err
	}

	metrics.RecordDeposit(amount)
	metrics.SetPoolTotals(saved.TotalManagedFund, saved.TotalAllocated)
	s.log.Infof("deposit of %d settled from %s", amount, caller)
	s.publisher.Publish(ctx, events.FundsDeposited{Caller: identity.Normalize(caller.String()), Amount: amount})
	return saved, nil
}

// Allocate reserves a registered program's full target from the unallocated
// pool balance. Admin only. Allocation is all or nothing: if the available
// balance cannot cover the target, nothing is reserved.
func (s *Service) Allocate(ctx context.Context, caller identity.Address, programID int64) (program.Program, error) {
	if err := s.gate.RequireAdmin(caller); err != nil {
		return program.Program{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.programs.GetProgram(ctx, programID)
	if err != nil {
		return program.Program{}, err
	}
	if p.Status != program.StatusRegistered {
		return program.Program{}, service.NewStateError("program", strconv.FormatInt(programID, 10), string(p.Status), string(program.StatusRegistered))
	}

	available, totals, err := s.available(ctx)
	if err != nil {
		return program.Program{}, err
	}
	if available < p.Target {
		return program.Program{}, service.NewInsufficientFundsError(p.Target, available)
	}

	allocated, err := s.registry.MarkAllocated(ctx, programID, p.Target)
	if err != nil {
		return program.Program{}, err
	}

	totals.TotalAllocated += p.Target
	if _, err := s.pool.SavePoolTotals(ctx, totals); err != nil {
		s.log.WithError(err).Errorf("pool totals write failed; rolling back allocation of program %d", programID)
		// p still holds the pre-allocation snapshot.
		if _, rbErr := s.programs.UpdateProgram(ctx, p); rbErr != nil {
			s.log.WithError(rbErr).Error("rollback of program allocation failed")
		}
		return program.Program{}, err
	}

	metrics.RecordAllocation()
	metrics.SetPoolTotals(totals.TotalManagedFund, totals.TotalAllocated)
	s.log.Infof("program %d allocated %d", programID, p.Target)
	s.publisher.Publish(ctx, events.FundsAllocated{ProgramID: programID, Amount: p.Target})
	return allocated, nil
}

// Withdraw releases part of a program's allocation to its responsible party
// and records the reason in the audit history. The allocation decrement is
// staged first and rolled back if the totals write or the custody push fails,
// so a failed withdrawal leaves the program, the totals, and the history
// untouched.
func (s *Service) Withdraw(ctx context.Context, caller identity.Address, programID int64, note string, amount int64) (program.Program, program.HistoryEntry, error) {
	if err := s.gate.RequirePIC(ctx, caller, programID); err != nil {
		return program.Program{}, program.HistoryEntry{}, err
	}
	if note == "" {
		return program.Program{}, program.HistoryEntry{}, service.RequiredError("note")
	}
	if amount <= 0 {
		return program.Program{}, program.HistoryEntry{}, service.NewValidationError("amount", "must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.programs.GetProgram(ctx, programID)
	if err != nil {
		return program.Program{}, program.HistoryEntry{}, err
	}
	if p.Status != program.StatusAllocated {
		return program.Program{}, program.HistoryEntry{}, service.NewStateError("program", strconv.FormatInt(programID, 10), string(p.Status), string(program.StatusAllocated))
	}
	if amount > p.Allocated {
		return program.Program{}, program.HistoryEntry{}, service.NewInsufficientFundsError(amount, p.Allocated)
	}

	updated, err := s.registry.AdjustAllocated(ctx, programID, -amount)
	if err != nil {
		return program.Program{}, program.HistoryEntry{}, err
	}

	totals, err := s.pool.GetPoolTotals(ctx)
	if err != nil {
		s.revertAllocation(ctx, programID, amount)
		return program.Program{}, program.HistoryEntry{}, err
	}
	totals.TotalAllocated -= amount
	if _, err := s.pool.SavePoolTotals(ctx, totals); err != nil {
		s.revertAllocation(ctx, programID, amount)
		return program.Program{}, program.HistoryEntry{}, err
	}

	if err := s.backend.TransferOut(ctx, p.PIC, amount); err != nil {
		s.log.WithError(err).Warnf("withdrawal of %d for program %d failed; rolling back", amount, programID)
		s.revertAllocation(ctx, programID, amount)
		totals.TotalAllocated += amount
		if _, rbErr := s.pool.SavePoolTotals(ctx, totals); rbErr != nil {
			s.log.WithError(rbErr).Error("rollback of pool totals failed")
		}
		return program.Program{}, program.HistoryEntry{}, service.NewTransferError("out", amount, err)
	}

	entry, err := s.programs.AppendHistory(ctx, program.HistoryEntry{
		ProgramID:   programID,
		Note:        note,
		Amount:      amount,
		WithdrawnAt: time.Now().UTC(),
	})
	if err != nil {
		return program.Program{}, program.HistoryEntry{}, err
	}

	metrics.RecordWithdrawal()
	metrics.SetPoolTotals(totals.TotalManagedFund, totals.TotalAllocated)
	s.log.Infof("program %d withdrew %d (%s)", programID, amount, note)
	s.publisher.Publish(ctx, events.FundsWithdrawn{
		ProgramID: programID,
		PIC:       updated.PIC,
		Note:      note,
		Amount:    amount,
	})
	return updated, entry, nil
}

// History returns a program's withdrawal records in append order.
func (s *Service) History(ctx context.Context, programID int64) ([]program.HistoryEntry, error) {
	return s.programs.ListHistory(ctx, programID)
}

// Totals returns the pool accounting.
func (s *Service) Totals(ctx context.Context) (storage.PoolTotals, error) {
	return s.pool.GetPoolTotals(ctx)
}

// Available returns the pool balance not yet reserved for any program.
func (s *Service) Available(ctx context.Context) (int64, error) {
	available, _, err := s.available(ctx)
	return available, err
}

// revertAllocation restores a staged allocation decrement after a later step
// of the withdrawal sequence failed.
func (s *Service) revertAllocation(ctx context.Context, programID, amount int64) {
	if _, err := s.registry.AdjustAllocated(ctx, programID, amount); err != nil {
		s.log.WithError(err).Error("rollback of program allocation failed")
	}
}

func (s *Service) available(ctx context.Context) (int64, storage.PoolTotals, error) {
	totals, err := s.pool.GetPoolTotals(ctx)
	if err != nil {
		return 0, storage.PoolTotals{}, err
	}
	balance, err := s.backend.BalanceOf(ctx, s.poolAddr)
	if err != nil {
		return 0, storage.PoolTotals{}, err
	}
	return balance - totals.TotalAllocated, totals, nil
}
