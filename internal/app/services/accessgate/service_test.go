package accessgate

import (
	"context"
	"testing"

	"github.com/FundPool-Network/funding_ledger/internal/app/core/service"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/program"
	"github.com/FundPool-Network/funding_ledger/internal/app/storage/memory"
)

func TestRequireAdmin(t *testing.T) {
	gate, err := New("0xAdmin", memory.New(), nil)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	if err := gate.RequireAdmin("0xadmin"); err != nil {
		t.Fatalf("admin should pass regardless of case: %v", err)
	}
	if err := gate.RequireAdmin("0xother"); !service.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := gate.RequireAdmin(""); !service.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for zero caller, got %v", err)
	}
}

func TestRequirePIC(t *testing.T) {
	store := memory.New()
	created, err := store.CreateProgram(context.Background(), program.Program{
		Name:   "clinic",
		Target: 100,
		PIC:    "0xpic",
		Status: program.StatusRegistered,
	})
	if err != nil {
		t.Fatalf("create program: %v", err)
	}

	gate, err := New("0xadmin", store, nil)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	ctx := context.Background()
	if err := gate.RequirePIC(ctx, "0xPIC", created.ID); err != nil {
		t.Fatalf("pic should pass: %v", err)
	}
	if err := gate.RequirePIC(ctx, "0xadmin", created.ID); !service.IsUnauthorized(err) {
		t.Fatalf("admin is not the pic; expected unauthorized, got %v", err)
	}
	if err := gate.RequirePIC(ctx, "0xpic", 99); !service.IsNotFound(err) {
		t.Fatalf("expected not-found for unknown program, got %v", err)
	}
}

func TestNew_RequiresAdmin(t *testing.T) {
	if _, err := New("", memory.New(), nil); err == nil {
		t.Fatal("expected construction to fail without admin")
	}
}
