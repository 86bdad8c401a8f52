package models_test

import (
	"github.com/google/uuid"
	"github.com/moneta-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestQueryErrorNamesResource() {
	var account models.Account
	err := models.DB.First(&account, "id = ?", uuid.New()).Error

	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
	assert.Equal(suite.T(), "there is no account matching your query", err.Error())
}

func (suite *TestSuiteStandard) TestQueryErrorDepluralizes() {
	var category models.Category
	err := models.DB.First(&category, "id = ?", uuid.New()).Error

	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
	assert.Equal(suite.T(), "there is no category matching your query", err.Error())
}

func (suite *TestSuiteStandard) TestConnectInvalidPath() {
	err := models.Connect("/this/path/does/not/exist/db.sqlite")
	assert.NotNil(suite.T(), err)
}
