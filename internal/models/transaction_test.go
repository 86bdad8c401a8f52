package models_test

import (
	"time"

	"github.com/moneta-app/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestTransactionFindTimeUTC() {
	tz, _ := time.LoadLocation("Europe/Berlin")

	transaction := models.Transaction{
		Date: time.Date(2000, 1, 2, 3, 4, 5, 6, tz),
	}

	err := transaction.AfterFind(models.DB)
	if err != nil {
		assert.Fail(suite.T(), "transaction.AfterFind failed")
	}

	assert.Equal(suite.T(), time.UTC, transaction.Date.Location(), "Timezone for model is not UTC")
}

func (suite *TestSuiteStandard) TestTransactionSaveTimeUTC() {
	tz, _ := time.LoadLocation("Europe/Berlin")

	transaction := models.Transaction{}
	err := transaction.BeforeSave(models.DB)
	if err != nil {
		assert.Fail(suite.T(), "transaction.BeforeSave failed")
	}

	assert.Equal(suite.T(), time.UTC, transaction.Date.Location(), "Timezone for model is not UTC")

	transaction = models.Transaction{
		Date: time.Date(2000, 1, 2, 3, 4, 5, 6, tz),
	}
	err = transaction.BeforeSave(models.DB)
	if err != nil {
		assert.Fail(suite.T(), "transaction.BeforeSave failed")
	}

	assert.Equal(suite.T(), time.UTC, transaction.Date.Location(), "Timezone for model is not UTC")
}

func (suite *TestSuiteStandard) TestTransactionTypeInvalid() {
	account := suite.createTestAccount(models.Account{})

	err := models.DB.Create(&models.Transaction{
		Amount:          decimal.NewFromFloat(10),
		Type:            "donation",
		SourceAccountID: account.ID,
	}).Error
	assert.ErrorIs(suite.T(), err, models.ErrTransactionTypeInvalid)
}

func (suite *TestSuiteStandard) TestTransactionCoordinateIncomplete() {
	account := suite.createTestAccount(models.Account{})
	latitude := 52.5186

	err := models.DB.Create(&models.Transaction{
		Amount:          decimal.NewFromFloat(10),
		Type:            models.TypeIncome,
		SourceAccountID: account.ID,
		Latitude:        &latitude,
	}).Error
	assert.ErrorIs(suite.T(), err, models.ErrTransactionCoordinateIncomplete)
}

func (suite *TestSuiteStandard) TestTransactionSameAccountTransfer() {
	account := suite.createTestAccount(models.Account{})

	err := models.DB.Create(&models.Transaction{
		Amount:               decimal.NewFromFloat(10),
		Type:                 models.TypeTransfer,
		SourceAccountID:      account.ID,
		DestinationAccountID: &account.ID,
	}).Error
	assert.ErrorIs(suite.T(), err, models.ErrSourceDoesNotEqualDestination)
}

func (suite *TestSuiteStandard) TestTransactionImmutable() {
	account := suite.createTestAccount(models.Account{})
	category := suite.createTestCategory(models.Category{})

	transaction := suite.createTestTransaction(models.Transaction{
		Amount:          decimal.NewFromFloat(10),
		Type:            models.TypeExpense,
		SourceAccountID: account.ID,
		CategoryID:      &category.ID,
	})

	for _, field := range []string{"Amount", "Type", "Date", "SourceAccountID"} {
		err := models.DB.Model(&transaction).Select("", field).Updates(models.Transaction{
			Amount:          decimal.NewFromFloat(999),
			Type:            models.TypeIncome,
			Date:            time.Now(),
			SourceAccountID: suite.createTestAccount(models.Account{}).ID,
		}).Error
		assert.ErrorIs(suite.T(), err, models.ErrTransactionImmutable, "field %s should be immutable", field)
	}
}

func (suite *TestSuiteStandard) TestTransactionNoteAndStatusMutable() {
	account := suite.createTestAccount(models.Account{})
	category := suite.createTestCategory(models.Category{})

	transaction := suite.createTestTransaction(models.Transaction{
		Amount:          decimal.NewFromFloat(10),
		Type:            models.TypeExpense,
		SourceAccountID: account.ID,
		CategoryID:      &category.ID,
	})

	err := models.DB.Model(&transaction).Select("", "Note", "Status").Updates(models.Transaction{
		Note:   "Corrected note",
		Status: "cleared",
	}).Error
	assert.Nil(suite.T(), err)
}

func (suite *TestSuiteStandard) TestTransactionConsumers() {
	account := suite.createTestAccount(models.Account{})
	jane := suite.createTestConsumer(models.Consumer{Name: "Jane"})
	john := suite.createTestConsumer(models.Consumer{Name: "John"})

	_ = suite.createTestTransaction(models.Transaction{
		Amount:          decimal.NewFromFloat(30),
		Type:            models.TypeIncome,
		SourceAccountID: account.ID,
		Consumers:       []models.Consumer{jane, john},
	})

	var read models.Transaction
	err := models.DB.Preload("Consumers").First(&read).Error
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), read.Consumers, 2)
}
