// Package events defines the ledger's domain events and the publishers that
// fan them out to logs, Redis, and connected websocket clients.
package events

import (
	"context"
	"time"

	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
)

// Event is a domain event emitted after a state change has been committed.
type Event interface {
	EventType() string
}

// ProgramCreated is emitted when a program is registered.
type ProgramCreated struct {
	ProgramID int64            `json:"program_id"`
	Name      string           `json:"name"`
	Target    int64            `json:"target"`
	PIC       identity.Address `json:"pic"`
}

func (ProgramCreated) EventType() string { return "program.created" }

// ProgramUpdated is emitted when a registered program's details change.
type ProgramUpdated struct {
	ProgramID   int64            `json:"program_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	PIC         identity.Address `json:"pic"`
}

func (ProgramUpdated) EventType() string { return "program.updated" }

// FundsDeposited is emitted when a deposit settles into the pool.
type FundsDeposited struct {
	Caller identity.Address `json:"caller"`
	Amount int64            `json:"amount"`
}

func (FundsDeposited) EventType() string { return "funds.deposited" }

// FundsAllocated is emitted when a program's full target is reserved.
type FundsAllocated struct {
	ProgramID int64 `json:"program_id"`
	Amount    int64 `json:"amount"`
}

func (FundsAllocated) EventType() string { return "funds.allocated" }

// FundsWithdrawn is emitted when a withdrawal settles to the responsible
// party.
type FundsWithdrawn struct {
	ProgramID int64            `json:"program_id"`
	PIC       identity.Address `json:"pic"`
	Note      string           `json:"note"`
	Amount    int64            `json:"amount"`
}

func (FundsWithdrawn) EventType() string { return "funds.withdrawn" }

// Envelope is the wire form of an event.
type Envelope struct {
	Type string      `json:"type"`
	At   time.Time   `json:"at"`
	Data interface{} `json:"data"`
}

// NewEnvelope wraps an event for transport.
func NewEnvelope(evt Event) Envelope {
	return Envelope{Type: evt.EventType(), At: time.Now().UTC(), Data: evt}
}

// Publisher delivers events to an outbound channel. Publish must not block
// state changes; implementations swallow delivery failures after logging.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Fanout delivers each event to every registered publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, evt Event) {
	for _, pub := range f {
		pub.Publish(ctx, evt)
	}
}

// Discard drops all events. Used when no outbound channel is configured.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
