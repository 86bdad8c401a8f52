package models_test

import (
	"github.com/moneta-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestCategoryTypeInvalid() {
	err := models.DB.Create(&models.Category{Name: "Invalid", Type: "windfall"}).Error
	assert.ErrorIs(suite.T(), err, models.ErrCategoryTypeInvalid)
}

func (suite *TestSuiteStandard) TestCategoryTypeImmutable() {
	category := suite.createTestCategory(models.Category{Type: models.TypeExpense})

	err := models.DB.Model(&category).Select("", "Type").Updates(models.Category{Type: models.TypeIncome}).Error
	assert.ErrorIs(suite.T(), err, models.ErrCategoryTypeImmutable)
}

func (suite *TestSuiteStandard) TestCategoryParentNotFound() {
	id := suite.createTestCategory(models.Category{}).ID
	_ = models.DB.Delete(&models.Category{DefaultModel: models.DefaultModel{ID: id}}).Error

	err := models.DB.Create(&models.Category{Name: "Orphan", Type: models.TypeExpense, ParentID: &id}).Error
	assert.ErrorIs(suite.T(), err, models.ErrCategoryParentNotFound)
}

func (suite *TestSuiteStandard) TestCategoryParentTypeMismatch() {
	parent := suite.createTestCategory(models.Category{Type: models.TypeIncome})

	err := models.DB.Create(&models.Category{Name: "Mismatch", Type: models.TypeExpense, ParentID: &parent.ID}).Error
	assert.ErrorIs(suite.T(), err, models.ErrCategoryTypeMismatch)
}

func (suite *TestSuiteStandard) TestCategoryParentIsItself() {
	category := suite.createTestCategory(models.Category{})

	err := models.DB.Model(&category).Select("", "ParentID").Updates(models.Category{ParentID: &category.ID}).Error
	assert.ErrorIs(suite.T(), err, models.ErrCategoryParentIsItself)
}

func (suite *TestSuiteStandard) TestCategoryNameUniquePerParentAndType() {
	parent := suite.createTestCategory(models.Category{Type: models.TypeExpense})
	_ = suite.createTestCategory(models.Category{Name: "Dining", Type: models.TypeExpense, ParentID: &parent.ID})

	// Same name under the same parent fails
	err := models.DB.Create(&models.Category{Name: "Dining", Type: models.TypeExpense, ParentID: &parent.ID}).Error
	assert.ErrorIs(suite.T(), err, models.ErrCategoryNameNotUnique)

	// Same name under another parent is fine
	other := suite.createTestCategory(models.Category{Type: models.TypeExpense})
	err = models.DB.Create(&models.Category{Name: "Dining", Type: models.TypeExpense, ParentID: &other.ID}).Error
	assert.Nil(suite.T(), err)
}

func (suite *TestSuiteStandard) TestCategoryDeleteCascades() {
	parent := suite.createTestCategory(models.Category{Type: models.TypeExpense})
	child := suite.createTestCategory(models.Category{Type: models.TypeExpense, ParentID: &parent.ID})
	_ = suite.createTestCategory(models.Category{Type: models.TypeExpense, ParentID: &child.ID})

	err := models.DB.Delete(&parent).Error
	assert.Nil(suite.T(), err)

	var count int64
	_ = models.DB.Model(&models.Category{}).Count(&count).Error
	assert.Equal(suite.T(), int64(0), count, "the whole subtree should be deleted")
}
