package registry

import (
	"context"
	"testing"

	"github.com/FundPool-Network/funding_ledger/internal/app/core/service"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/program"
	"github.com/FundPool-Network/funding_ledger/internal/app/services/accessgate"
	"github.com/FundPool-Network/funding_ledger/internal/app/storage/memory"
)

const admin = "0xadmin"

func newRegistry(t *testing.T) *Service {
	t.Helper()
	store := memory.New()
	gate, err := accessgate.New(admin, store, nil)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	return New(gate, store, nil, nil)
}

func TestCreate_AdminOnly(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	if _, err := reg.Create(ctx, "0xstranger", "clinic", "rural clinic", 500, "0xpic"); !service.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	created, err := reg.Create(ctx, admin, "clinic", "rural clinic", 500, "0xpic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 0 || created.Status != program.StatusRegistered || created.Allocated != 0 {
		t.Fatalf("unexpected program: %+v", created)
	}
}

func TestCreate_Validation(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	cases := []struct {
		name        string
		progName    string
		description string
		target      int64
		pic         string
	}{
		{"empty name", "", "desc", 100, "0xpic"},
		{"empty description", "n", "", 100, "0xpic"},
		{"zero target", "n", "desc", 0, "0xpic"},
		{"negative target", "n", "desc", -5, "0xpic"},
		{"zero pic", "n", "desc", 100, ""},
	}
	for _, tc := range cases {
		if _, err := reg.Create(ctx, admin, tc.progName, tc.description, tc.target, identity.Address(tc.pic)); !service.IsValidationError(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestUpdate_FrozenOnceAllocated(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	created, err := reg.Create(ctx, admin, "clinic", "rural clinic", 500, "0xpic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := reg.MarkAllocated(ctx, created.ID, created.Target); err != nil {
		t.Fatalf("mark allocated: %v", err)
	}

	if _, err := reg.Update(ctx, admin, created.ID, "renamed", "rural clinic", "0xpic"); !service.IsInvalidState(err) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestUpdate_RejectsEmptyFields(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	created, err := reg.Create(ctx, admin, "clinic", "rural clinic", 500, "0xpic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		name        string
		progName    string
		description string
		pic         string
	}{
		{"empty name", "", "rural clinic", "0xpic"},
		{"empty description", "clinic", "", "0xpic"},
		{"zero pic", "clinic", "rural clinic", ""},
	}
	for _, tc := range cases {
		if _, err := reg.Update(ctx, admin, created.ID, tc.progName, tc.description, identity.Address(tc.pic)); !service.IsValidationError(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	// The rejected updates must not have touched the program.
	got, err := reg.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "clinic" || got.Description != "rural clinic" || got.PIC != "0xpic" {
		t.Fatalf("rejected update must not change the program: %+v", got)
	}
}

func TestUpdate_OverwritesDetails(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	created, err := reg.Create(ctx, admin, "clinic", "rural clinic", 500, "0xpic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := reg.Update(ctx, admin, created.ID, "field clinic", "mobile field clinic", "0xpic2")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "field clinic" || updated.Description != "mobile field clinic" || updated.PIC != "0xpic2" {
		t.Fatalf("unexpected program: %+v", updated)
	}
	if updated.Target != 500 || updated.Status != program.StatusRegistered {
		t.Fatalf("target and status must not change on update: %+v", updated)
	}
}

func TestMarkAllocated_FullTargetOnly(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	created, err := reg.Create(ctx, admin, "clinic", "rural clinic", 500, "0xpic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := reg.MarkAllocated(ctx, created.ID, 400); !service.IsValidationError(err) {
		t.Fatalf("partial allocation must be rejected, got %v", err)
	}

	allocated, err := reg.MarkAllocated(ctx, created.ID, 500)
	if err != nil {
		t.Fatalf("mark allocated: %v", err)
	}
	if allocated.Status != program.StatusAllocated || allocated.Allocated != 500 {
		t.Fatalf("unexpected program: %+v", allocated)
	}

	// Terminal state: a second allocation is rejected.
	if _, err := reg.MarkAllocated(ctx, created.ID, 500); !service.IsInvalidState(err) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestAdjustAllocated_Bounds(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	created, err := reg.Create(ctx, admin, "clinic", "rural clinic", 500, "0xpic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := reg.AdjustAllocated(ctx, created.ID, -100); !service.IsInvalidState(err) {
		t.Fatalf("registered programs carry no allocation, got %v", err)
	}

	if _, err := reg.MarkAllocated(ctx, created.ID, 500); err != nil {
		t.Fatalf("mark allocated: %v", err)
	}

	p, err := reg.AdjustAllocated(ctx, created.ID, -200)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if p.Allocated != 300 {
		t.Fatalf("expected 300 remaining, got %d", p.Allocated)
	}

	if _, err := reg.AdjustAllocated(ctx, created.ID, -400); !service.IsInsufficientFunds(err) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := reg.AdjustAllocated(ctx, created.ID, 300); !service.IsValidationError(err) {
		t.Fatalf("allocation above target must be rejected, got %v", err)
	}
}
