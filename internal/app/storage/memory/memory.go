package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FundPool-Network/funding_ledger/internal/app/core/service"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/program"
	"github.com/FundPool-Network/funding_ledger/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development. Programs are held in a slice so ids stay dense in creation
// order.
type Store struct {
	mu       sync.RWMutex
	programs []program.Program
	history  map[int64][]program.HistoryEntry
	totals   storage.PoolTotals
}

var _ storage.ProgramStore = (*Store)(nil)
var _ storage.PoolStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		history: make(map[int64][]program.HistoryEntry),
	}
}

// ProgramStore implementation ------------------------------------------------

func (s *Store) CreateProgram(_ context.Context, p program.Program) (program.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = int64(len(s.programs))
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	s.programs = append(s.programs, p)
	return p, nil
}

func (s *Store) UpdateProgram(_ context.Context, p program.Program) (program.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID < 0 || p.ID >= int64(len(s.programs)) {
		return program.Program{}, service.NewNotFoundError("program", strconv.FormatInt(p.ID, 10))
	}

	original := s.programs[p.ID]
	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	s.programs[p.ID] = p
	return p, nil
}

func (s *Store) GetProgram(_ context.Context, id int64) (program.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 0 || id >= int64(len(s.programs)) {
		return program.Program{}, service.NewNotFoundError("program", strconv.FormatInt(id, 10))
	}
	return s.programs[id], nil
}

func (s *Store) ListPrograms(_ context.Context) ([]program.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]program.Program(nil), s.programs...), nil
}

func (s *Store) AppendHistory(_ context.Context, entry program.HistoryEntry) (program.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ProgramID < 0 || entry.ProgramID >= int64(len(s.programs)) {
		return program.HistoryEntry{}, service.NewNotFoundError("program", strconv.FormatInt(entry.ProgramID, 10))
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	if entry.WithdrawnAt.IsZero() {
		entry.WithdrawnAt = now
	}

	s.history[entry.ProgramID] = append(s.history[entry.ProgramID], entry)
	return entry, nil
}

func (s *Store) ListHistory(_ context.Context, programID int64) ([]program.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]program.HistoryEntry(nil), s.history[programID]...), nil
}

// PoolStore implementation ---------------------------------------------------

func (s *Store) GetPoolTotals(_ context.Context) (storage.PoolTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.totals, nil
}

func (s *Store) SavePoolTotals(_ context.Context, totals storage.PoolTotals) (storage.PoolTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals.UpdatedAt = time.Now().UTC()
	s.totals = totals
	return s.totals, nil
}
