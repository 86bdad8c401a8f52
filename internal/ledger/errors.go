package ledger

import (
	"errors"
)

var (
	ErrInvalidAmount          = errors.New("the transaction amount must be positive")
	ErrMissingAccount         = errors.New("a required account for the transaction is not set or does not exist")
	ErrSameAccountTransfer    = errors.New("source and destination account of a transfer must be different")
	ErrMissingCategory        = errors.New("a category is required for income and expense transactions")
	ErrUnexpectedDestination  = errors.New("a destination account can only be set for transfers")
	ErrRecordNotFound         = errors.New("there is no transaction matching the ID")
	ErrPersistence            = errors.New("the transaction could not be committed to the store")
)
