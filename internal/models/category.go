package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category classifies transactions of a specific type.
//
// Categories form a tree: a category can have a parent and any number
// of children. All categories in a subtree share the same type.
type Category struct {
	DefaultModel
	Name     string          `gorm:"uniqueIndex:category_name_parent_type"`
	Type     TransactionType `gorm:"uniqueIndex:category_name_parent_type"`
	Icon     string
	ParentID *uuid.UUID `gorm:"uniqueIndex:category_name_parent_type"`
	Parent   *Category  `json:"-"`
	Children []Category `json:"-" gorm:"foreignKey:ParentID"`
}

// BeforeSave trims whitespace from all strings.
func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Icon = strings.TrimSpace(c.Icon)

	return nil
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	_ = c.DefaultModel.BeforeCreate(tx)

	if !c.Type.Valid() {
		return ErrCategoryTypeInvalid
	}

	return c.checkParent(tx, c.ParentID, c.Type)
}

// BeforeUpdate verifies the state of the category before committing an
// update to the database.
//
// The type of a category is fixed at creation. Reclassifying a category
// would silently change the meaning of every transaction recorded
// against it.
func (c *Category) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("Type") {
		return ErrCategoryTypeImmutable
	}

	if tx.Statement.Changed("ParentID") {
		toSave := tx.Statement.Dest.(Category)
		if toSave.ParentID != nil && *toSave.ParentID == c.ID {
			return ErrCategoryParentIsItself
		}

		return c.checkParent(tx, toSave.ParentID, c.Type)
	}

	return nil
}

// BeforeDelete cascades the deletion to all child categories.
//
// Children are deleted one by one so that their own BeforeDelete hooks
// run, cascading through subtrees of arbitrary depth.
func (c *Category) BeforeDelete(tx *gorm.DB) error {
	var children []Category
	err := tx.Where("parent_id = ?", c.ID).Find(&children).Error
	if err != nil {
		return err
	}

	for _, child := range children {
		err = tx.Delete(&child).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// checkParent verifies that the referenced parent category exists and
// has the same type as the category being saved.
func (c *Category) checkParent(tx *gorm.DB, parentID *uuid.UUID, t TransactionType) error {
	if parentID == nil {
		return nil
	}

	var parent Category
	err := tx.First(&parent, "id = ?", *parentID).Error
	if err != nil {
		return ErrCategoryParentNotFound
	}

	if parent.Type != t {
		return ErrCategoryTypeMismatch
	}

	return nil
}
