package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountKind determines how an account holds money.
type AccountKind string

const (
	AccountKindSavings AccountKind = "savings"
	AccountKindCredit  AccountKind = "credit"
)

// Valid reports whether the kind is one of the known account kinds.
func (k AccountKind) Valid() bool {
	return k == AccountKindSavings || k == AccountKindCredit
}

// Account represents a money-holding container, e.g. a bank account
// or a credit card.
//
// The balance is a running total: the initial balance set on creation
// plus the effect of every recorded transaction. It is only ever
// changed by the ledger package.
type Account struct {
	DefaultModel
	Name    string          `gorm:"uniqueIndex:account_name"`
	Kind    AccountKind     `gorm:"default:savings"`
	Balance decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Note    string
}

// BeforeSave trims whitespace from all strings.
func (a *Account) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)

	return nil
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	if a.Name == "" {
		return ErrAccountNameEmpty
	}

	if a.Kind == "" {
		a.Kind = AccountKindSavings
	}

	if !a.Kind.Valid() {
		return ErrAccountKindInvalid
	}

	return nil
}

// BeforeUpdate verifies the state of the account before
// committing an update to the database.
func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	toSave, ok := tx.Statement.Dest.(Account)
	if !ok {
		// Column updates, e.g. the balance writes of the ledger
		return nil
	}

	if tx.Statement.Changed("Name") && strings.TrimSpace(toSave.Name) == "" {
		return ErrAccountNameEmpty
	}

	if tx.Statement.Changed("Kind") && !toSave.Kind.Valid() {
		return ErrAccountKindInvalid
	}

	return nil
}

// BeforeDelete blocks deletion while transactions still reference the
// account. Voiding the transactions first reverses their balance
// effects, after which deletion succeeds.
func (a *Account) BeforeDelete(tx *gorm.DB) error {
	var count int64
	err := tx.Model(&Transaction{}).
		Where("source_account_id = ? OR destination_account_id = ?", a.ID, a.ID).
		Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrAccountHasRecords
	}

	return nil
}

// Transactions returns all transactions for this account.
func (a Account) Transactions(db *gorm.DB) []Transaction {
	var transactions []Transaction

	// Get all transactions where the account is either the source or the destination
	db.Where("source_account_id = ? OR destination_account_id = ?", a.ID, a.ID).
		Find(&transactions)
	return transactions
}
