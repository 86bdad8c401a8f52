package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType determines the direction of the money flow for
// a transaction.
type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// Valid reports whether the type is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense || t == TypeTransfer
}

// Transaction represents a single ledger entry.
//
// The amount is a magnitude, always positive. The direction of the
// money flow is determined by the type: income flows into the source
// account, expenses flow out of it, transfers move money from the
// source to the destination account.
//
// Committed transactions are never edited in place. The only mutable
// fields are the cosmetic Status tag and the Note.
type Transaction struct {
	DefaultModel
	Date                 time.Time       // Time of day is currently only used for sorting
	Amount               decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Type                 TransactionType
	Note                 string
	Status               string
	Latitude             *float64
	Longitude            *float64
	SourceAccountID      uuid.UUID `gorm:"check:source_destination_different,source_account_id != destination_account_id OR destination_account_id IS NULL"`
	SourceAccount        Account   `json:"-"`
	DestinationAccountID *uuid.UUID
	DestinationAccount   *Account   `json:"-"`
	CategoryID           *uuid.UUID
	Category             *Category  `json:"-"`
	Consumers            []Consumer `json:"-" gorm:"many2many:transaction_consumers"`
}

// AfterFind updates the timestamps to use UTC as
// timezone, not +0000. Yes, this is different.
//
// We already store them in UTC, but somehow reading
// them from the database returns them as +0000.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	// Enforce dates to be in UTC
	t.Date = t.Date.In(time.UTC)
	return
}

// BeforeSave sets the timezone for the Date to UTC and trims
// whitespace from string fields.
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Note = strings.TrimSpace(t.Note)
	t.Status = strings.TrimSpace(t.Status)

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	return nil
}

// BeforeCreate verifies that the type is valid and that the
// coordinate is either complete or absent.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	_ = t.DefaultModel.BeforeCreate(tx)

	if !t.Type.Valid() {
		return ErrTransactionTypeInvalid
	}

	if (t.Latitude == nil) != (t.Longitude == nil) {
		return ErrTransactionCoordinateIncomplete
	}

	return nil
}

// BeforeUpdate rejects changes to everything but the Status tag and
// the Note. Committed transactions are part of the account balances,
// editing them in place would silently corrupt the books.
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	for _, field := range []string{"Amount", "Type", "Date", "SourceAccountID", "DestinationAccountID", "CategoryID", "Latitude", "Longitude"} {
		if tx.Statement.Changed(field) {
			return ErrTransactionImmutable
		}
	}

	return nil
}
