package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

var (
	ErrAccountNameNotUnique  = errors.New("the account name must be unique")
	ErrAccountNameEmpty      = errors.New("the account name must not be empty")
	ErrAccountKindInvalid    = errors.New("the account kind must be one of: savings, credit")
	ErrAccountHasRecords     = errors.New("the account cannot be deleted while transactions reference it")
	ErrAccountBalanceManaged = errors.New("the account balance can only be changed by recording or voiding transactions")
)

var (
	ErrCategoryNameNotUnique  = errors.New("the category name must be unique for its parent and type")
	ErrCategoryTypeInvalid    = errors.New("the category type must be one of: income, expense, transfer")
	ErrCategoryTypeImmutable  = errors.New("the type of an existing category cannot be changed")
	ErrCategoryTypeMismatch   = errors.New("a subcategory must have the same type as its parent category")
	ErrCategoryParentNotFound = errors.New("there is no parent category matching the parent ID")
	ErrCategoryParentIsItself = errors.New("a category cannot be its own parent")
)

var ErrConsumerNameEmpty = errors.New("the consumer name must not be empty")

var (
	ErrTransactionTypeInvalid          = errors.New("the transaction type must be one of: income, expense, transfer")
	ErrTransactionCoordinateIncomplete = errors.New("latitude and longitude must either both be set or both be empty")
	ErrTransactionImmutable            = errors.New("only the status and note of a recorded transaction can be changed")
	ErrSourceDoesNotEqualDestination   = errors.New("source and destination accounts for a transaction must be different")
)
