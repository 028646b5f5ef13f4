// Package program defines the funding program domain model. Pure data
// structures; lifecycle rules live in the registry and ledger services.
package program

import (
	"time"

	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
)

// Status is the lifecycle state of a program. The only transition is
// registered -> allocated; allocated is terminal.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusAllocated  Status = "allocated"
)

// Program is a named funding target drawing from the pooled balance.
type Program struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Target      int64            `json:"target"`
	PIC         identity.Address `json:"pic"`
	Status      Status           `json:"status"`
	Allocated   int64            `json:"allocated"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// HistoryEntry is an immutable audit record of one withdrawal.
type HistoryEntry struct {
	ID          string    `json:"id"`
	ProgramID   int64     `json:"program_id"`
	Note        string    `json:"note"`
	Amount      int64     `json:"amount"`
	WithdrawnAt time.Time `json:"withdrawn_at"`
	CreatedAt   time.Time `json:"created_at"`
}
