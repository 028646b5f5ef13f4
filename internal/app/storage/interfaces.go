// Package storage defines the persistence interfaces the funding ledger
// services depend on. Implementations live in the memory and postgres
// subpackages; both report missing records with the core not-found error so
// callers classify failures uniformly.
package storage

import (
	"context"
	"time"

	"github.com/FundPool-Network/funding_ledger/internal/app/domain/program"
)

// PoolTotals is the process-wide accounting snapshot for the pooled balance.
type PoolTotals struct {
	TotalManagedFund int64     `json:"total_managed_fund"`
	TotalAllocated   int64     `json:"total_allocated"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProgramStore persists programs and their withdrawal history. CreateProgram
// assigns ids densely in creation order starting at zero; programs are never
// deleted and history is append-only.
type ProgramStore interface {
	CreateProgram(ctx context.Context, p program.Program) (program.Program, error)
	UpdateProgram(ctx context.Context, p program.Program) (program.Program, error)
	GetProgram(ctx context.Context, id int64) (program.Program, error)
	ListPrograms(ctx context.Context) ([]program.Program, error)

	AppendHistory(ctx context.Context, entry program.HistoryEntry) (program.HistoryEntry, error)
	ListHistory(ctx context.Context, programID int64) ([]program.HistoryEntry, error)
}

// PoolStore persists the pool accounting totals.
type PoolStore interface {
	GetPoolTotals(ctx context.Context) (PoolTotals, error)
	SavePoolTotals(ctx context.Context, totals PoolTotals) (PoolTotals, error)
}
