package memory

import (
	"context"
	"testing"

	"github.com/FundPool-Network/funding_ledger/internal/app/core/service"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/program"
)

func TestStore_SequentialIDs(t *testing.T) {
	store := New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		created, err := store.CreateProgram(ctx, program.Program{
			Name:   "prog",
			Target: 100,
			Status: program.StatusRegistered,
		})
		if err != nil {
			t.Fatalf("create program %d: %v", i, err)
		}
		if created.ID != int64(i) {
			t.Fatalf("expected id %d, got %d", i, created.ID)
		}
	}

	list, err := store.ListPrograms(ctx)
	if err != nil {
		t.Fatalf("list programs: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 programs, got %d", len(list))
	}
	for i, p := range list {
		if p.ID != int64(i) {
			t.Fatalf("list out of creation order at %d: id %d", i, p.ID)
		}
	}
}

func TestStore_GetUnknownProgram(t *testing.T) {
	store := New()

	if _, err := store.GetProgram(context.Background(), 5); !service.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if _, err := store.GetProgram(context.Background(), -1); !service.IsNotFound(err) {
		t.Fatalf("expected not-found error for negative id, got %v", err)
	}
}

func TestStore_HistoryAppendOrder(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateProgram(ctx, program.Program{Name: "p", Target: 10})
	if err != nil {
		t.Fatalf("create program: %v", err)
	}

	notes := []string{"phase 1", "phase 2", "phase 3"}
	for _, note := range notes {
		if _, err := store.AppendHistory(ctx, program.HistoryEntry{
			ProgramID: created.ID,
			Note:      note,
			Amount:    1,
		}); err != nil {
			t.Fatalf("append history: %v", err)
		}
	}

	entries, err := store.ListHistory(ctx, created.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != len(notes) {
		t.Fatalf("expected %d entries, got %d", len(notes), len(entries))
	}
	for i, entry := range entries {
		if entry.Note != notes[i] {
			t.Fatalf("history out of append order at %d: %s", i, entry.Note)
		}
		if entry.ID == "" {
			t.Fatalf("entry %d missing id", i)
		}
	}

	if _, err := store.AppendHistory(ctx, program.HistoryEntry{ProgramID: 99, Note: "x", Amount: 1}); !service.IsNotFound(err) {
		t.Fatalf("expected not-found for unknown program, got %v", err)
	}
}
