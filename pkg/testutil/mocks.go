// Package testutil provides shared test fakes for the funding ledger.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
	"github.com/FundPool-Network/funding_ledger/internal/app/events"
	"github.com/FundPool-Network/funding_ledger/internal/custody"
)

// MemoryCustody is an in-memory custody backend with scriptable balances and
// failure injection. Transfers move balances between holder addresses and the
// pool the way the token contract would.
type MemoryCustody struct {
	mu       sync.Mutex
	pool     identity.Address
	balances map[identity.Address]int64

	// FailTransferIn / FailTransferOut, when set, decline the next matching
	// transfer with the given error without moving balances.
	FailTransferIn  error
	FailTransferOut error
}

var _ custody.Backend = (*MemoryCustody)(nil)

// NewMemoryCustody creates a backend settling against the given pool address.
func NewMemoryCustody(pool identity.Address) *MemoryCustody {
	return &MemoryCustody{
		pool:     identity.Normalize(pool.String()),
		balances: make(map[identity.Address]int64),
	}
}

// SetBalance scripts the balance held by addr.
func (m *MemoryCustody) SetBalance(addr identity.Address, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[identity.Normalize(addr.String())] = amount
}

func (m *MemoryCustody) BalanceOf(_ context.Context, addr identity.Address) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[identity.Normalize(addr.String())], nil
}

func (m *MemoryCustody) TransferIn(_ context.Context, from identity.Address, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailTransferIn != nil {
		err := m.FailTransferIn
		m.FailTransferIn = nil
		return err
	}

	sender := identity.Normalize(from.String())
	if m.balances[sender] < amount {
		return fmt.Errorf("transfer of %d from %s declined by contract", amount, sender)
	}
	m.balances[sender] -= amount
	m.balances[m.pool] += amount
	return nil
}

func (m *MemoryCustody) TransferOut(_ context.Context, to identity.Address, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailTransferOut != nil {
		err := m.FailTransferOut
		m.FailTransferOut = nil
		return err
	}

	if m.balances[m.pool] < amount {
		return fmt.Errorf("transfer of %d from %s declined by contract", amount, m.pool)
	}
	m.balances[m.pool] -= amount
	m.balances[identity.Normalize(to.String())] += amount
	return nil
}

// EventRecorder captures published events for assertions.
type EventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

var _ events.Publisher = (*EventRecorder)(nil)

func (r *EventRecorder) Publish(_ context.Context, evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a copy of the captured events in publish order.
func (r *EventRecorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Types returns the captured event type names in publish order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, evt := range r.events {
		types[i] = evt.EventType()
	}
	return types
}
