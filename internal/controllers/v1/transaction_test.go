package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	v1 "github.com/moneta-app/backend/internal/controllers/v1"
	"github.com/moneta-app/backend/internal/ledger"
	"github.com/moneta-app/backend/internal/models"
	"github.com/moneta-app/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// balanceOf reads the current balance of an account via the API.
func balanceOf(t *testing.T, id uuid.UUID) decimal.Decimal {
	r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/accounts/%s", id), "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.AccountResponse
	test.DecodeResponse(t, &r, &response)
	return response.Data.Balance
}

// TestTransactionsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestTransactionsDBClosed() {
	a := createTestAccount(suite.T(), v1.AccountCreate{})
	c := createTestCategory(suite.T(), v1.CategoryEditable{})

	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Recording fails",
			func(t *testing.T) {
				createTestTransaction(t, v1.TransactionCreate{
					SourceAccountID: a.Data.ID,
					CategoryID:      &c.Data.ID,
				}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v1/transactions", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.TransactionListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Contains(t, *response.Error, models.ErrGeneral.Error())
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

// TestTransactionsOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestTransactionsOptions() {
	tests := []struct {
		name   string
		id     string // path at the Transactions endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No Transaction with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Transaction exists", createTestTransaction(suite.T(), v1.TransactionCreate{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/transactions", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

// TestTransactionsRecord verifies that recording a transaction updates the
// balances of the affected accounts.
func (suite *TestSuiteStandard) TestTransactionsRecord() {
	source := createTestAccount(suite.T(), v1.AccountCreate{Balance: decimal.NewFromFloat(100)})
	destination := createTestAccount(suite.T(), v1.AccountCreate{})

	income := createTestCategory(suite.T(), v1.CategoryEditable{Type: models.TypeIncome})
	expense := createTestCategory(suite.T(), v1.CategoryEditable{Type: models.TypeExpense})

	// Income: source += amount
	_ = createTestTransaction(suite.T(), v1.TransactionCreate{
		Type:            models.TypeIncome,
		Amount:          decimal.NewFromFloat(50),
		SourceAccountID: source.Data.ID,
		CategoryID:      &income.Data.ID,
	})
	assert.True(suite.T(), balanceOf(suite.T(), source.Data.ID).Equal(decimal.NewFromFloat(150)))

	// Expense: source -= amount
	_ = createTestTransaction(suite.T(), v1.TransactionCreate{
		Type:            models.TypeExpense,
		Amount:          decimal.NewFromFloat(30),
		SourceAccountID: source.Data.ID,
		CategoryID:      &expense.Data.ID,
	})
	assert.True(suite.T(), balanceOf(suite.T(), source.Data.ID).Equal(decimal.NewFromFloat(120)))

	// Transfer: source -= amount, destination += amount
	_ = createTestTransaction(suite.T(), v1.TransactionCreate{
		Type:                 models.TypeTransfer,
		Amount:               decimal.NewFromFloat(20),
		SourceAccountID:      source.Data.ID,
		DestinationAccountID: &destination.Data.ID,
	})
	assert.True(suite.T(), balanceOf(suite.T(), source.Data.ID).Equal(decimal.NewFromFloat(100)))
	assert.True(suite.T(), balanceOf(suite.T(), destination.Data.ID).Equal(decimal.NewFromFloat(20)))
}

func (suite *TestSuiteStandard) TestTransactionsRecordInvalid() {
	source := createTestAccount(suite.T(), v1.AccountCreate{})
	destination := createTestAccount(suite.T(), v1.AccountCreate{})
	category := createTestCategory(suite.T(), v1.CategoryEditable{})

	tests := []struct {
		name    string
		create  v1.TransactionCreate
		status  int
		message string
	}{
		{
			"Zero amount",
			v1.TransactionCreate{
				Type:            models.TypeExpense,
				Amount:          decimal.Zero,
				SourceAccountID: source.Data.ID,
				CategoryID:      &category.Data.ID,
			},
			http.StatusBadRequest,
			ledger.ErrInvalidAmount.Error(),
		},
		{
			"Negative amount",
			v1.TransactionCreate{
				Type:            models.TypeExpense,
				Amount:          decimal.NewFromFloat(-10),
				SourceAccountID: source.Data.ID,
				CategoryID:      &category.Data.ID,
			},
			http.StatusBadRequest,
			ledger.ErrInvalidAmount.Error(),
		},
		{
			"Invalid type",
			v1.TransactionCreate{
				Type:            "donation",
				Amount:          decimal.NewFromFloat(10),
				SourceAccountID: source.Data.ID,
				CategoryID:      &category.Data.ID,
			},
			http.StatusBadRequest,
			models.ErrTransactionTypeInvalid.Error(),
		},
		{
			"Unknown source account",
			v1.TransactionCreate{
				Type:            models.TypeExpense,
				Amount:          decimal.NewFromFloat(10),
				SourceAccountID: uuid.New(),
				CategoryID:      &category.Data.ID,
			},
			http.StatusBadRequest,
			ledger.ErrMissingAccount.Error(),
		},
		{
			"Transfer to the same account",
			v1.TransactionCreate{
				Type:                 models.TypeTransfer,
				Amount:               decimal.NewFromFloat(10),
				SourceAccountID:      source.Data.ID,
				DestinationAccountID: &source.Data.ID,
			},
			http.StatusBadRequest,
			ledger.ErrSameAccountTransfer.Error(),
		},
		{
			"Expense with destination",
			v1.TransactionCreate{
				Type:                 models.TypeExpense,
				Amount:               decimal.NewFromFloat(10),
				SourceAccountID:      source.Data.ID,
				DestinationAccountID: &destination.Data.ID,
				CategoryID:           &category.Data.ID,
			},
			http.StatusBadRequest,
			ledger.ErrUnexpectedDestination.Error(),
		},
		{
			"Expense without category",
			v1.TransactionCreate{
				Type:            models.TypeExpense,
				Amount:          decimal.NewFromFloat(10),
				SourceAccountID: source.Data.ID,
			},
			http.StatusBadRequest,
			ledger.ErrMissingCategory.Error(),
		},
		{
			"Unknown consumer",
			v1.TransactionCreate{
				Type:            models.TypeExpense,
				Amount:          decimal.NewFromFloat(10),
				SourceAccountID: source.Data.ID,
				CategoryID:      &category.Data.ID,
				ConsumerIDs:     []uuid.UUID{uuid.New()},
			},
			http.StatusNotFound,
			models.ErrResourceNotFound.Error(),
		},
		{
			"Incomplete coordinates",
			v1.TransactionCreate{
				Type:            models.TypeExpense,
				Amount:          decimal.NewFromFloat(10),
				SourceAccountID: source.Data.ID,
				CategoryID:      &category.Data.ID,
				Latitude:        float64Ptr(52.5186),
			},
			http.StatusBadRequest,
			models.ErrTransactionCoordinateIncomplete.Error(),
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/transactions", tt.create)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.TransactionResponse
			test.DecodeResponse(t, &r, &response)
			require.NotNil(t, response.Error)
			assert.Contains(t, *response.Error, tt.message)

			// No failed request may move money
			assert.True(t, balanceOf(t, source.Data.ID).IsZero())
			assert.True(t, balanceOf(t, destination.Data.ID).IsZero())
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsRecordConsumers() {
	jane := createTestConsumer(suite.T(), v1.ConsumerEditable{})
	tom := createTestConsumer(suite.T(), v1.ConsumerEditable{})

	transaction := createTestTransaction(suite.T(), v1.TransactionCreate{
		ConsumerIDs: []uuid.UUID{jane.Data.ID, tom.Data.ID},
	})

	r := test.Request(suite.T(), http.MethodGet, transaction.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.ElementsMatch(suite.T(), []uuid.UUID{jane.Data.ID, tom.Data.ID}, response.Data.ConsumerIDs)
}

// TestTransactionsVoid verifies that voiding a transaction reverses its
// balance effect and deletes it.
func (suite *TestSuiteStandard) TestTransactionsVoid() {
	account := createTestAccount(suite.T(), v1.AccountCreate{Balance: decimal.NewFromFloat(100)})

	transaction := createTestTransaction(suite.T(), v1.TransactionCreate{
		Type:            models.TypeExpense,
		Amount:          decimal.NewFromFloat(40),
		SourceAccountID: account.Data.ID,
	})
	require.True(suite.T(), balanceOf(suite.T(), account.Data.ID).Equal(decimal.NewFromFloat(60)))

	r := test.Request(suite.T(), http.MethodDelete, transaction.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	assert.True(suite.T(), balanceOf(suite.T(), account.Data.ID).Equal(decimal.NewFromFloat(100)))

	// The transaction is gone
	r = test.Request(suite.T(), http.MethodGet, transaction.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	// Voiding a second time fails
	r = test.Request(suite.T(), http.MethodDelete, transaction.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTransactionsGetSingle() {
	transaction := createTestTransaction(suite.T(), v1.TransactionCreate{})

	tests := []struct {
		name   string
		id     string
		status int
		method string
	}{
		{"GET Existing Transaction", transaction.Data.ID.String(), http.StatusOK, http.MethodGet},
		{"GET No Transaction with this ID", uuid.New().String(), http.StatusNotFound, http.MethodGet},
		{"GET Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodGet},
		{"PATCH Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodPatch},
		{"DELETE Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodDelete},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, tt.method, fmt.Sprintf("http://example.com/v1/transactions/%s", tt.id), "")

			var response v1.TransactionResponse
			test.DecodeResponse(t, &r, &response)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

// TestTransactionsUpdate verifies that note and status can be changed on a
// recorded transaction.
func (suite *TestSuiteStandard) TestTransactionsUpdate() {
	transaction := createTestTransaction(suite.T(), v1.TransactionCreate{})

	r := test.Request(suite.T(), http.MethodPatch, transaction.Data.Links.Self, map[string]any{
		"note":   "Split the bill",
		"status": "cleared",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), http.MethodGet, transaction.Data.Links.Self, "")
	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "Split the bill", response.Data.Note)
	assert.Equal(suite.T(), "cleared", response.Data.Status)
}

// TestTransactionsUpdateImmutable verifies that all fields other than note
// and status are rejected on update.
func (suite *TestSuiteStandard) TestTransactionsUpdateImmutable() {
	transaction := createTestTransaction(suite.T(), v1.TransactionCreate{})

	tests := []struct {
		name string
		body map[string]any
	}{
		{"Amount", map[string]any{"amount": "100.00"}},
		{"Type", map[string]any{"type": "income"}},
		{"Date", map[string]any{"date": "2024-02-20T12:03:50Z"}},
		{"Source account", map[string]any{"sourceAccountId": uuid.New().String()}},
		{"Category", map[string]any{"categoryId": uuid.New().String()}},
		{"Note and amount together", map[string]any{"note": "sneaky", "amount": "100.00"}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, transaction.Data.Links.Self, tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)

			var response v1.TransactionResponse
			test.DecodeResponse(t, &r, &response)
			require.NotNil(t, response.Error)
			assert.Contains(t, *response.Error, models.ErrTransactionImmutable.Error())
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsGetFilter() {
	account := createTestAccount(suite.T(), v1.AccountCreate{})
	other := createTestAccount(suite.T(), v1.AccountCreate{})
	groceries := createTestCategory(suite.T(), v1.CategoryEditable{})
	salary := createTestCategory(suite.T(), v1.CategoryEditable{Type: models.TypeIncome})
	jane := createTestConsumer(suite.T(), v1.ConsumerEditable{})

	_ = createTestTransaction(suite.T(), v1.TransactionCreate{
		TransactionEditable: v1.TransactionEditable{Note: "Water bill", Status: "cleared"},
		Date:                time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
		Type:                models.TypeExpense,
		SourceAccountID:     account.Data.ID,
		CategoryID:          &groceries.Data.ID,
		ConsumerIDs:         []uuid.UUID{jane.Data.ID},
	})

	_ = createTestTransaction(suite.T(), v1.TransactionCreate{
		Date:            time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC),
		Type:            models.TypeIncome,
		SourceAccountID: account.Data.ID,
		CategoryID:      &salary.Data.ID,
	})

	_ = createTestTransaction(suite.T(), v1.TransactionCreate{
		TransactionEditable: v1.TransactionEditable{Note: "Dinner"},
		Date:                time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Type:                models.TypeExpense,
		SourceAccountID:     other.Data.ID,
		CategoryID:          &groceries.Data.ID,
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Account", fmt.Sprintf("account=%s", account.Data.ID), 2},
		{"Other account", fmt.Sprintf("account=%s", other.Data.ID), 1},
		{"Category", fmt.Sprintf("category=%s", groceries.Data.ID), 2},
		{"Type income", "type=income", 1},
		{"Type expense", "type=expense", 2},
		{"Status", "status=cleared", 1},
		{"Consumer", fmt.Sprintf("consumer=%s", jane.Data.ID), 1},
		{"Note fuzzy", "note=bill", 1},
		{"Note empty", "note=", 1},
		{"From date", "fromDate=2024-02-15T00:00:00Z", 2},
		{"Until date", "untilDate=2024-02-15T00:00:00Z", 1},
		{"Date range", "fromDate=2024-02-01T00:00:00Z&untilDate=2024-03-01T00:00:00Z", 2},
		{"No filter", "", 3},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.TransactionListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.len, "Response: %s", r.Body.String())
		})
	}
}

// TestTransactionsGetSorted verifies that transactions are returned most
// recent first.
func (suite *TestSuiteStandard) TestTransactionsGetSorted() {
	older := createTestTransaction(suite.T(), v1.TransactionCreate{
		Date: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	newer := createTestTransaction(suite.T(), v1.TransactionCreate{
		Date: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 2)
	assert.Equal(suite.T(), newer.Data.ID, response.Data[0].ID)
	assert.Equal(suite.T(), older.Data.ID, response.Data[1].ID)
}

func (suite *TestSuiteStandard) TestTransactionsPagination() {
	account := createTestAccount(suite.T(), v1.AccountCreate{})
	category := createTestCategory(suite.T(), v1.CategoryEditable{})

	for i := 0; i < 5; i++ {
		_ = createTestTransaction(suite.T(), v1.TransactionCreate{
			Date:            time.Date(2024, 2, 1+i, 12, 0, 0, 0, time.UTC),
			SourceAccountID: account.Data.ID,
			CategoryID:      &category.Data.ID,
		})
	}

	tests := []struct {
		name   string
		query  string
		len    int
		offset uint
		limit  int
	}{
		{"Defaults", "", 5, 0, 50},
		{"Limit", "limit=2", 2, 0, 2},
		{"Limit and offset", "limit=2&offset=4", 1, 4, 2},
		{"Limit -1 returns everything", "limit=-1", 5, 0, -1},
		{"Limit 0 returns nothing", "limit=0", 0, 0, 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.TransactionListResponse
			test.DecodeResponse(t, &r, &response)

			assert.Len(t, response.Data, tt.len)
			require.NotNil(t, response.Pagination)
			assert.Equal(t, tt.offset, response.Pagination.Offset)
			assert.Equal(t, tt.limit, response.Pagination.Limit)
			assert.Equal(t, int64(5), response.Pagination.Total)
		})
	}
}

func float64Ptr(f float64) *float64 {
	return &f
}
