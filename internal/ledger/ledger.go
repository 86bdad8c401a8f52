// Package ledger applies and reverses the balance effect of
// transactions against their accounts.
//
// It owns the only two operations that may mutate account balances:
// Record and Void. Both serialize per affected account and commit the
// transaction row and the balance updates atomically, so that no
// partial state can be observed even when a write fails halfway.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moneta-app/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Draft is an unvalidated candidate transaction. It references other
// resources by ID only; Record resolves and verifies them.
type Draft struct {
	Date                 time.Time
	Amount               decimal.Decimal
	Type                 models.TransactionType
	Note                 string
	Status               string
	Latitude             *float64
	Longitude            *float64
	SourceAccountID      uuid.UUID
	DestinationAccountID *uuid.UUID
	CategoryID           *uuid.UUID
	ConsumerIDs          []uuid.UUID
}

// validate checks the draft against the transaction invariants that do
// not need database access.
func (d Draft) validate() error {
	if !d.Type.Valid() {
		return models.ErrTransactionTypeInvalid
	}

	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if d.SourceAccountID == uuid.Nil {
		return ErrMissingAccount
	}

	if d.Type == models.TypeTransfer {
		if d.DestinationAccountID == nil || *d.DestinationAccountID == uuid.Nil {
			return ErrMissingAccount
		}

		if *d.DestinationAccountID == d.SourceAccountID {
			return ErrSameAccountTransfer
		}

		return nil
	}

	if d.DestinationAccountID != nil && *d.DestinationAccountID != uuid.Nil {
		return ErrUnexpectedDestination
	}

	if d.CategoryID == nil || *d.CategoryID == uuid.Nil {
		return ErrMissingCategory
	}

	return nil
}

// model returns the transaction for the draft.
func (d Draft) model() models.Transaction {
	return models.Transaction{
		Date:                 d.Date,
		Amount:               d.Amount,
		Type:                 d.Type,
		Note:                 d.Note,
		Status:               d.Status,
		Latitude:             d.Latitude,
		Longitude:            d.Longitude,
		SourceAccountID:      d.SourceAccountID,
		DestinationAccountID: d.DestinationAccountID,
		CategoryID:           d.CategoryID,
	}
}

// Record validates the draft, persists it as a transaction and applies
// its balance effect:
//
//	income:   source += amount
//	expense:  source -= amount
//	transfer: source -= amount, destination += amount
//
// The transaction row and the balance updates are committed atomically.
// If anything fails, nothing is persisted.
func Record(db *gorm.DB, draft Draft) (models.Transaction, error) {
	if err := draft.validate(); err != nil {
		return models.Transaction{}, err
	}

	ids := []uuid.UUID{draft.SourceAccountID}
	if draft.DestinationAccountID != nil {
		ids = append(ids, *draft.DestinationAccountID)
	}

	unlock := lockAccounts(ids...)
	defer unlock()

	transaction := draft.model()
	err := db.Transaction(func(tx *gorm.DB) error {
		source, err := loadAccount(tx, draft.SourceAccountID)
		if err != nil {
			return err
		}

		var destination models.Account
		if draft.Type == models.TypeTransfer {
			destination, err = loadAccount(tx, *draft.DestinationAccountID)
			if err != nil {
				return err
			}
		}

		if draft.CategoryID != nil {
			err = tx.First(&models.Category{}, "id = ?", *draft.CategoryID).Error
			if err != nil {
				return fmt.Errorf("%w: no category matches the category ID", ErrMissingCategory)
			}
		}

		if len(draft.ConsumerIDs) > 0 {
			var consumers []models.Consumer
			err = tx.Find(&consumers, "id IN ?", draft.ConsumerIDs).Error
			if err != nil {
				return fmt.Errorf("%w: %s", ErrPersistence, err)
			}

			if len(consumers) != len(draft.ConsumerIDs) {
				return fmt.Errorf("%w consumer matching your query", models.ErrResourceNotFound)
			}

			transaction.Consumers = consumers
		}

		err = tx.Create(&transaction).Error
		if err != nil {
			return wrapStoreError(err)
		}

		switch draft.Type {
		case models.TypeIncome:
			err = setBalance(tx, source, source.Balance.Add(draft.Amount))
		case models.TypeExpense:
			err = setBalance(tx, source, source.Balance.Sub(draft.Amount))
		case models.TypeTransfer:
			err = setBalance(tx, source, source.Balance.Sub(draft.Amount))
			if err == nil {
				err = setBalance(tx, destination, destination.Balance.Add(draft.Amount))
			}
		}

		return err
	})
	if err != nil {
		return models.Transaction{}, wrapStoreError(err)
	}

	recordsTotal.WithLabelValues(string(draft.Type)).Inc()
	return transaction, nil
}

// Void reverses exactly the balance effect the transaction applied when
// it was recorded and then deletes it. Voiding a transaction twice, or
// voiding one that never existed, returns ErrRecordNotFound.
func Void(db *gorm.DB, id uuid.UUID) error {
	var transaction models.Transaction
	err := db.First(&transaction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return wrapStoreError(err)
	}

	ids := []uuid.UUID{transaction.SourceAccountID}
	if transaction.DestinationAccountID != nil {
		ids = append(ids, *transaction.DestinationAccountID)
	}

	unlock := lockAccounts(ids...)
	defer unlock()

	err = db.Transaction(func(tx *gorm.DB) error {
		// Re-read under the lock, the transaction may have been voided
		// by a concurrent call before the lock was acquired
		err := tx.First(&transaction, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return wrapStoreError(err)
		}

		source, err := loadAccount(tx, transaction.SourceAccountID)
		if err != nil {
			return err
		}

		switch transaction.Type {
		case models.TypeIncome:
			err = setBalance(tx, source, source.Balance.Sub(transaction.Amount))
		case models.TypeExpense:
			err = setBalance(tx, source, source.Balance.Add(transaction.Amount))
		case models.TypeTransfer:
			var destination models.Account
			destination, err = loadAccount(tx, *transaction.DestinationAccountID)
			if err != nil {
				return err
			}

			err = setBalance(tx, source, source.Balance.Add(transaction.Amount))
			if err == nil {
				err = setBalance(tx, destination, destination.Balance.Sub(transaction.Amount))
			}
		}
		if err != nil {
			return err
		}

		err = tx.Delete(&transaction).Error
		if err != nil {
			return wrapStoreError(err)
		}

		return nil
	})
	if err != nil {
		return wrapStoreError(err)
	}

	voidsTotal.WithLabelValues(string(transaction.Type)).Inc()
	return nil
}

// loadAccount reads an account within the transaction. A missing
// account maps to ErrMissingAccount, it may have been deleted
// concurrently.
func loadAccount(tx *gorm.DB, id uuid.UUID) (models.Account, error) {
	var account models.Account
	err := tx.First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Account{}, ErrMissingAccount
		}
		return models.Account{}, wrapStoreError(err)
	}

	return account, nil
}

// setBalance writes the new balance for the account.
func setBalance(tx *gorm.DB, account models.Account, balance decimal.Decimal) error {
	err := tx.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("balance", balance).Error
	if err != nil {
		return wrapStoreError(err)
	}

	return nil
}

// wrapStoreError marks an error from the underlying store as a
// persistence failure unless it already is a domain error.
func wrapStoreError(err error) error {
	for _, domain := range []error{
		ErrInvalidAmount,
		ErrMissingAccount,
		ErrSameAccountTransfer,
		ErrMissingCategory,
		ErrUnexpectedDestination,
		ErrRecordNotFound,
		ErrPersistence,
		models.ErrResourceNotFound,
		models.ErrSourceDoesNotEqualDestination,
		models.ErrTransactionTypeInvalid,
		models.ErrTransactionCoordinateIncomplete,
	} {
		if errors.Is(err, domain) {
			return err
		}
	}

	return fmt.Errorf("%w: %s", ErrPersistence, err)
}
