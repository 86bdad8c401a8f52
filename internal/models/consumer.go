package models

import (
	"strings"

	"gorm.io/gorm"
)

// Consumer represents a person that spending is attributed to.
type Consumer struct {
	DefaultModel
	Name      string
	Avatar    []byte `json:"-"` // Raw image bytes, served separately
	IsDefault bool
}

// BeforeSave trims whitespace from all strings.
func (c *Consumer) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)

	return nil
}

func (c *Consumer) BeforeCreate(tx *gorm.DB) error {
	_ = c.DefaultModel.BeforeCreate(tx)

	if c.Name == "" {
		return ErrConsumerNameEmpty
	}

	return nil
}

// BeforeUpdate verifies the state of the consumer before
// committing an update to the database.
func (c *Consumer) BeforeUpdate(tx *gorm.DB) error {
	toSave, ok := tx.Statement.Dest.(Consumer)
	if ok && tx.Statement.Changed("Name") && strings.TrimSpace(toSave.Name) == "" {
		return ErrConsumerNameEmpty
	}

	return nil
}

// SetDefault marks this consumer as the default one and clears the flag
// on all others, keeping the "at most one default" invariant.
func (c *Consumer) SetDefault(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Consumer{}).
			Where("is_default = ?", true).
			Where("id != ?", c.ID).
			Update("is_default", false).Error
		if err != nil {
			return err
		}

		c.IsDefault = true
		return tx.Model(c).Update("is_default", true).Error
	})
}
