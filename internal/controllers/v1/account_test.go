package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/moneta-app/backend/internal/controllers/v1"
	"github.com/moneta-app/backend/internal/models"
	"github.com/moneta-app/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAccountsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestAccountsDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				createTestAccount(t, v1.AccountCreate{}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v1/accounts", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.AccountListResponse
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

// TestAccountsOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestAccountsOptions() {
	tests := []struct {
		name   string
		id     string // path at the Accounts endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No Account with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Account exists", createTestAccount(suite.T(), v1.AccountCreate{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/accounts", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestAccountsCreate() {
	tests := []struct {
		name    string
		body    v1.AccountCreate
		status  int
		message string // Expected error message substring, if any
	}{
		{
			"With initial balance",
			v1.AccountCreate{
				AccountEditable: v1.AccountEditable{Name: "Checking"},
				Balance:         decimal.NewFromFloat(100.00),
			},
			http.StatusCreated,
			"",
		},
		{
			"Credit account",
			v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Visa", Kind: models.AccountKindCredit}},
			http.StatusCreated,
			"",
		},
		{
			"Invalid kind",
			v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Broken", Kind: "checking"}},
			http.StatusBadRequest,
			models.ErrAccountKindInvalid.Error(),
		},
		{
			"Empty name",
			v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "   "}},
			http.StatusBadRequest,
			models.ErrAccountNameEmpty.Error(),
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/accounts", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.AccountResponse
			test.DecodeResponse(t, &r, &response)

			if tt.status == http.StatusCreated {
				require.NotNil(t, response.Data)
				assert.True(t, tt.body.Balance.Equal(response.Data.Balance), "balance is %s, expected %s", response.Data.Balance, tt.body.Balance)
			} else {
				require.NotNil(t, response.Error)
				assert.Contains(t, *response.Error, tt.message)
			}
		})
	}
}

// TestAccountsCreateDefaultKind verifies that accounts without an explicit
// kind are created as savings accounts.
func (suite *TestSuiteStandard) TestAccountsCreateDefaultKind() {
	account := createTestAccount(suite.T(), v1.AccountCreate{})
	assert.Equal(suite.T(), models.AccountKindSavings, account.Data.Kind)
}

// TestAccountsCreateDuplicateName verifies that account names are unique.
func (suite *TestSuiteStandard) TestAccountsCreateDuplicateName() {
	_ = createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Unique Account Name"}})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/accounts", v1.AccountCreate{
		AccountEditable: v1.AccountEditable{Name: "Unique Account Name"},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.AccountResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), *response.Error, models.ErrAccountNameNotUnique.Error())
}

// TestAccountsGetSingle verifies that requests for the resource endpoints are
// handled correctly.
func (suite *TestSuiteStandard) TestAccountsGetSingle() {
	a := createTestAccount(suite.T(), v1.AccountCreate{})

	tests := []struct {
		name   string
		id     string
		status int
		method string
	}{
		{"GET Existing Account", a.Data.ID.String(), http.StatusOK, http.MethodGet},
		{"GET No Account with this ID", uuid.New().String(), http.StatusNotFound, http.MethodGet},
		{"GET Invalid ID (negative number)", "-56", http.StatusBadRequest, http.MethodGet},
		{"GET Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodGet},
		{"PATCH Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodPatch},
		{"DELETE Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodDelete},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, tt.method, fmt.Sprintf("http://example.com/v1/accounts/%s", tt.id), "")

			var account v1.AccountResponse
			test.DecodeResponse(t, &r, &account)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestAccountsGetFilter() {
	_ = createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Checking"}})
	_ = createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Joint Checking"}})
	_ = createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Visa", Kind: models.AccountKindCredit}})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Name single", "name=Visa", 1},
		{"Name fuzzy", "name=Checking", 2},
		{"Kind savings", "kind=savings", 2},
		{"Kind credit", "kind=credit", 1},
		{"Name and kind", "name=Checking&kind=credit", 0},
		{"No filter", "", 3},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/accounts?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.AccountListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.len)
		})
	}
}

// TestAccountsGetSorted verifies that accounts are sorted by name.
func (suite *TestSuiteStandard) TestAccountsGetSorted() {
	_ = createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Zebra"}})
	_ = createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Alpaca"}})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/accounts", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.AccountListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 2)
	assert.Equal(suite.T(), "Alpaca", response.Data[0].Name)
	assert.Equal(suite.T(), "Zebra", response.Data[1].Name)
}

func (suite *TestSuiteStandard) TestAccountsUpdate() {
	a := createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Old Name"}})

	r := test.Request(suite.T(), http.MethodPatch, a.Data.Links.Self, map[string]any{
		"name": "New Name",
		"note": "Now with a note",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), http.MethodGet, a.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.AccountResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "New Name", response.Data.Name)
	assert.Equal(suite.T(), "Now with a note", response.Data.Note)
}

// TestAccountsUpdateBalance verifies that the balance of an account cannot
// be set via the API.
func (suite *TestSuiteStandard) TestAccountsUpdateBalance() {
	a := createTestAccount(suite.T(), v1.AccountCreate{Balance: decimal.NewFromFloat(10)})

	r := test.Request(suite.T(), http.MethodPatch, a.Data.Links.Self, map[string]any{
		"balance": "1000000.00",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.AccountResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), *response.Error, "cannot be set directly")

	// The balance is unchanged
	r = test.Request(suite.T(), http.MethodGet, a.Data.Links.Self, "")
	test.DecodeResponse(suite.T(), &r, &response)
	assert.True(suite.T(), response.Data.Balance.Equal(decimal.NewFromFloat(10)))
}

func (suite *TestSuiteStandard) TestAccountsUpdateInvalidKind() {
	a := createTestAccount(suite.T(), v1.AccountCreate{})

	r := test.Request(suite.T(), http.MethodPatch, a.Data.Links.Self, map[string]any{
		"kind": "offshore",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.AccountResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), *response.Error, models.ErrAccountKindInvalid.Error())
}

func (suite *TestSuiteStandard) TestAccountsDelete() {
	a := createTestAccount(suite.T(), v1.AccountCreate{})

	r := test.Request(suite.T(), http.MethodDelete, a.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, a.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestAccountsDeleteReferenced verifies that accounts with transactions
// cannot be deleted.
func (suite *TestSuiteStandard) TestAccountsDeleteReferenced() {
	a := createTestAccount(suite.T(), v1.AccountCreate{})
	_ = createTestTransaction(suite.T(), v1.TransactionCreate{SourceAccountID: a.Data.ID})

	r := test.Request(suite.T(), http.MethodDelete, a.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response struct {
		Error string `json:"error"`
	}
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), response.Error, models.ErrAccountHasRecords.Error())
}
