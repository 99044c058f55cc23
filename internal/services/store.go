package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/money"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store couples the database with the locks that serialise ledger writes.
//
// Every mutation runs inside one database transaction under the write lock.
// On postgres the transaction also takes a database-wide advisory lock, so writers
// in other processes (a second API replica, ledgerctl import or reconcile)
// queue behind it too, and accounts read by the engine are row-locked.
// Reads run under the read lock; on postgres they use a read-only
// REPEATABLE READ transaction so every query sees the same snapshot.
type Store struct {
	db *gorm.DB
	mu sync.RWMutex
}

// ledgerLockKey is the pg_advisory_xact_lock key shared by all ledger writers.
const ledgerLockKey int64 = 0x66696e747261636b

// NewStore creates a Store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Write runs fn in a transaction while holding the write lock.
func (s *Store) Write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isPostgres(tx) {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", ledgerLockKey).Error; err != nil {
				return fmt.Errorf("acquire ledger lock: %w", err)
			}
		}
		return fn(tx)
	})
}

// Read runs fn in a transaction while holding the read lock.
func (s *Store) Read(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.WithContext(ctx).Transaction(fn, snapshotOptions(s.db)...)
}

// snapshotOptions returns the transaction options for a consistent read.
// SQLite transactions are serialisable already.
func snapshotOptions(db *gorm.DB) []*sql.TxOptions {
	if !isPostgres(db) {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}

// accountStore implements ledger.Accounts over a transaction.
type accountStore struct {
	tx *gorm.DB
}

// Account implements ledger.Accounts. Inactive accounts resolve like any
// other. On postgres the row stays locked until the transaction ends.
func (s accountStore) Account(ctx context.Context, id string) (*models.Account, error) {
	q := s.tx.WithContext(ctx)
	if isPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var account models.Account
	if err := q.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// UpdateBalances implements ledger.Accounts. Rows are written in id order.
func (s accountStore) UpdateBalances(ctx context.Context, balances map[string]money.Amount) error {
	ids := make([]string, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		res := s.tx.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("balance", balances[id])
		if res.Error != nil {
			return fmt.Errorf("update balance of %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ledger.ErrAccountNotFound
		}
	}
	return nil
}

// engineFor returns a ledger engine bound to tx.
func engineFor(tx *gorm.DB) *ledger.Engine {
	return ledger.New(accountStore{tx: tx})
}

// ledgerError translates ledger and validation errors into AppErrors.
func ledgerError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var refErr *ledger.ReferenceError
	if errors.As(err, &refErr) {
		e := apperrors.Wrap(apperrors.ErrReference, err)
		e.Message = refErr.Error()
		return e
	}
	if models.IsValidationError(err) || errors.Is(err, ledger.ErrBalanceOverflow) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// notFound maps gorm.ErrRecordNotFound to sentinel and anything else to an
// internal error.
func notFound(err error, sentinel *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
