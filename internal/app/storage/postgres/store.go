// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/FundPool-Network/funding_ledger/internal/app/core/service"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/program"
	"github.com/FundPool-Network/funding_ledger/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.ProgramStore = (*Store)(nil)
var _ storage.PoolStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- ProgramStore -----------------------------------------------------------

// CreateProgram inserts a program under the next sequential id. The id is
// assigned inside a transaction so concurrent creates never leave gaps.
func (s *Store) CreateProgram(ctx context.Context, p program.Program) (program.Program, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return program.Program{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(id) + 1, 0) FROM fund_programs
	`)
	if err := row.Scan(&p.ID); err != nil {
		return program.Program{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO fund_programs (id, name, description, target, pic, status, allocated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Name, p.Description, p.Target, p.PIC.String(), p.Status, p.Allocated, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return program.Program{}, err
	}

	if err := tx.Commit(); err != nil {
		return program.Program{}, err
	}
	return p, nil
}

func (s *Store) UpdateProgram(ctx context.Context, p program.Program) (program.Program, error) {
	existing, err := s.GetProgram(ctx, p.ID)
	if err != nil {
		return program.Program{}, err
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE fund_programs
		SET name = $2, description = $3, target = $4, pic = $5, status = $6, allocated = $7, updated_at = $8
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Target, p.PIC.String(), p.Status, p.Allocated, p.UpdatedAt)
	if err != nil {
		return program.Program{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return program.Program{}, service.NewNotFoundError("program", strconv.FormatInt(p.ID, 10))
	}
	return p, nil
}

func (s *Store) GetProgram(ctx context.Context, id int64) (program.Program, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, target, pic, status, allocated, created_at, updated_at
		FROM fund_programs
		WHERE id = $1
	`, id)

	p, err := scanProgram(row)
	if errors.Is(err, sql.ErrNoRows) {
		return program.Program{}, service.NewNotFoundError("program", strconv.FormatInt(id, 10))
	}
	return p, err
}

func (s *Store) ListPrograms(ctx context.Context) ([]program.Program, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, target, pic, status, allocated, created_at, updated_at
		FROM fund_programs
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []program.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) AppendHistory(ctx context.Context, entry program.HistoryEntry) (program.HistoryEntry, error) {
	if _, err := s.GetProgram(ctx, entry.ProgramID); err != nil {
		return program.HistoryEntry{}, err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	if entry.WithdrawnAt.IsZero() {
		entry.WithdrawnAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fund_program_history (id, program_id, note, amount, withdrawn_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.ProgramID, entry.Note, entry.Amount, entry.WithdrawnAt, entry.CreatedAt)
	if err != nil {
		return program.HistoryEntry{}, err
	}
	return entry, nil
}

func (s *Store) ListHistory(ctx context.Context, programID int64) ([]program.HistoryEntry, error) {
	if _, err := s.GetProgram(ctx, programID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, program_id, note, amount, withdrawn_at, created_at
		FROM fund_program_history
		WHERE program_id = $1
		ORDER BY created_at, id
	`, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []program.HistoryEntry
	for rows.Next() {
		var entry program.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.ProgramID, &entry.Note, &entry.Amount, &entry.WithdrawnAt, &entry.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// --- PoolStore --------------------------------------------------------------

// GetPoolTotals returns the single pool totals row, or zero totals when the
// ledger has never been written.
func (s *Store) GetPoolTotals(ctx context.Context) (storage.PoolTotals, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT total_managed_fund, total_allocated, updated_at
		FROM fund_pool_totals
		WHERE id = 1
	`)

	var totals storage.PoolTotals
	if err := row.Scan(&totals.TotalManagedFund, &totals.TotalAllocated, &totals.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PoolTotals{}, nil
		}
		return storage.PoolTotals{}, err
	}
	return totals, nil
}

func (s *Store) SavePoolTotals(ctx context.Context, totals storage.PoolTotals) (storage.PoolTotals, error) {
	totals.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fund_pool_totals (id, total_managed_fund, total_allocated, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET total_managed_fund = EXCLUDED.total_managed_fund,
		    total_allocated = EXCLUDED.total_allocated,
		    updated_at = EXCLUDED.updated_at
	`, totals.TotalManagedFund, totals.TotalAllocated, totals.UpdatedAt)
	if err != nil {
		return storage.PoolTotals{}, err
	}
	return totals, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProgram(row rowScanner) (program.Program, error) {
	var (
		p   program.Program
		pic string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Target, &pic, &p.Status, &p.Allocated, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return program.Program{}, err
	}
	p.PIC = identity.Address(pic)
	return p, nil
}
