package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/moneta-app/backend/internal/events"
	"github.com/moneta-app/backend/internal/httputil"
	"github.com/moneta-app/backend/internal/ledger"
	"github.com/moneta-app/backend/internal/models"
	moneta_uuid "github.com/moneta-app/backend/internal/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Publisher is the event feed for ledger operations. It may be nil,
// in which case no events are published.
var Publisher *events.Publisher

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func RegisterTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsTransactionList)
		r.GET("", GetTransactions)
		r.POST("", CreateTransaction)
	}

	// Transaction with ID
	{
		r.OPTIONS("/:id", OptionsTransactionDetail)
		r.GET("/:id", GetTransaction)
		r.PATCH("/:id", UpdateTransaction)
		r.DELETE("/:id", DeleteTransaction)
	}
}

// TransactionEditable are the only fields of a recorded transaction
// that can still be changed.
type TransactionEditable struct {
	Note   string `json:"note" example:"Lunch with the team" default:""` // A note
	Status string `json:"status" example:"cleared" default:""`           // A free-form status tag
}

// TransactionCreate is the request body for recording a transaction.
type TransactionCreate struct {
	TransactionEditable
	Date                 time.Time              `json:"date" example:"2024-02-20T12:03:50Z"` // Defaults to the current time
	Amount               decimal.Decimal        `json:"amount" example:"14.37"`              // The amount, always positive
	Type                 models.TransactionType `json:"type" example:"expense"`              // One of "income", "expense" or "transfer"
	Latitude             *float64               `json:"latitude" example:"52.5186"`
	Longitude            *float64               `json:"longitude" example:"13.3763"`
	SourceAccountID      uuid.UUID              `json:"sourceAccountId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`
	DestinationAccountID *uuid.UUID             `json:"destinationAccountId" example:"8e16b456-a719-48ce-9dd6-60ba502dd492"` // Only set for transfers
	CategoryID           *uuid.UUID             `json:"categoryId" example:"b3aad7be-b6e0-4597-86dd-03a5a4d090ea"`           // Required except for transfers
	ConsumerIDs          []uuid.UUID            `json:"consumerIds"`                                                         // Consumers the transaction is split between
}

func (create TransactionCreate) draft() ledger.Draft {
	return ledger.Draft{
		Date:                 create.Date,
		Amount:               create.Amount,
		Type:                 create.Type,
		Note:                 create.Note,
		Status:               create.Status,
		Latitude:             create.Latitude,
		Longitude:            create.Longitude,
		SourceAccountID:      create.SourceAccountID,
		DestinationAccountID: create.DestinationAccountID,
		CategoryID:           create.CategoryID,
		ConsumerIDs:          create.ConsumerIDs,
	}
}

type TransactionLinks struct {
	Self          string `json:"self" example:"https://example.com/api/v1/transactions/d430d7c3-d14c-4712-9336-ee56965a6673"`        // The transaction itself
	SourceAccount string `json:"sourceAccount" example:"https://example.com/api/v1/accounts/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"` // The account the money flows from
}

// Transaction is the API representation of a transaction.
type Transaction struct {
	models.DefaultModel
	TransactionEditable
	Date                 time.Time              `json:"date" example:"2024-02-20T12:03:50Z"`
	Amount               decimal.Decimal        `json:"amount" example:"14.37"`
	Type                 models.TransactionType `json:"type" example:"expense"`
	Latitude             *float64               `json:"latitude" example:"52.5186"`
	Longitude            *float64               `json:"longitude" example:"13.3763"`
	SourceAccountID      uuid.UUID              `json:"sourceAccountId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`
	DestinationAccountID *uuid.UUID             `json:"destinationAccountId" example:"8e16b456-a719-48ce-9dd6-60ba502dd492"`
	CategoryID           *uuid.UUID             `json:"categoryId" example:"b3aad7be-b6e0-4597-86dd-03a5a4d090ea"`
	ConsumerIDs          []uuid.UUID            `json:"consumerIds"`
	Links                TransactionLinks       `json:"links"`
}

func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	url := c.GetString(string(models.ContextURL))

	consumerIDs := make([]uuid.UUID, 0, len(model.Consumers))
	for _, consumer := range model.Consumers {
		consumerIDs = append(consumerIDs, consumer.ID)
	}

	return Transaction{
		DefaultModel: model.DefaultModel,
		TransactionEditable: TransactionEditable{
			Note:   model.Note,
			Status: model.Status,
		},
		Date:                 model.Date,
		Amount:               model.Amount,
		Type:                 model.Type,
		Latitude:             model.Latitude,
		Longitude:            model.Longitude,
		SourceAccountID:      model.SourceAccountID,
		DestinationAccountID: model.DestinationAccountID,
		CategoryID:           model.CategoryID,
		ConsumerIDs:          consumerIDs,
		Links: TransactionLinks{
			Self:          fmt.Sprintf("%s/v1/transactions/%s", url, model.ID),
			SourceAccount: fmt.Sprintf("%s/v1/accounts/%s", url, model.SourceAccountID),
		},
	}
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`                                                          // The Transaction data, if the request was successful
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

// TransactionQueryFilter are the query parameters for the transaction
// list. Fields with filterField:"false" are handled explicitly, all
// others are passed to the database query directly.
type TransactionQueryFilter struct {
	CategoryID moneta_uuid.UUID `form:"category"`                      // Filter by category
	Type       string           `form:"type"`                          // Filter by type
	Status     string           `form:"status"`                        // Filter by status tag
	AccountID  moneta_uuid.UUID `form:"account" filterField:"false"`   // Filter by source or destination account
	ConsumerID moneta_uuid.UUID `form:"consumer" filterField:"false"`  // Filter by participating consumer
	Note       string           `form:"note" filterField:"false"`      // Filter by note, fuzzy
	FromDate   time.Time        `form:"fromDate" filterField:"false"`  // Only transactions at or after this date
	UntilDate  time.Time        `form:"untilDate" filterField:"false"` // Only transactions before this date
	Offset     uint             `form:"offset" filterField:"false"`    // The offset of the first transaction returned, defaults to 0
	Limit      int              `form:"limit" filterField:"false"`     // Maximum number of transactions to return, defaults to 50
}

func (f TransactionQueryFilter) model() models.Transaction {
	var categoryID *uuid.UUID
	if f.CategoryID.UUID != uuid.Nil {
		categoryID = &f.CategoryID.UUID
	}

	return models.Transaction{
		CategoryID: categoryID,
		Type:       models.TransactionType(f.Type),
		Status:     f.Status,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Router			/v1/transactions/{id} [options]
func OptionsTransactionDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.First(&models.Transaction{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Record transaction
// @Description	Records a transaction and applies its effect to the account balances. The row and the balance updates are committed atomically.
// @Tags			Transactions
// @Produce		json
// @Success		201			{object}	TransactionResponse
// @Failure		400			{object}	TransactionResponse
// @Failure		404			{object}	TransactionResponse
// @Failure		500			{object}	TransactionResponse
// @Param			transaction	body		TransactionCreate	true	"Transaction"
// @Router			/v1/transactions [post]
func CreateTransaction(c *gin.Context) {
	var create TransactionCreate
	if err := httputil.BindData(c, &create); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, TransactionResponse{Error: &e})
		return
	}

	transaction, err := ledger.Record(models.DB, create.draft())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	Publisher.Publish(c.Request.Context(), events.Recorded(transaction))

	data := newTransaction(c, transaction)
	c.JSON(http.StatusCreated, TransactionResponse{Data: &data})
}

// @Summary		Get transactions
// @Description	Returns a list of transactions, most recent first
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	TransactionListResponse
// @Failure		500	{object}	TransactionListResponse
// @Param			category	query	string	false	"Filter by category ID"
// @Param			type		query	string	false	"Filter by type"
// @Param			status		query	string	false	"Filter by status tag"
// @Param			account		query	string	false	"Filter by source or destination account ID"
// @Param			consumer	query	string	false	"Filter by participating consumer ID"
// @Param			note		query	string	false	"Filter by note, fuzzy"
// @Param			fromDate	query	string	false	"Only transactions at or after this date"
// @Param			untilDate	query	string	false	"Only transactions before this date"
// @Param			offset		query	uint	false	"The offset of the first transaction returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of transactions to return. Defaults to 50."
// @Router			/v1/transactions [get]
func GetTransactions(c *gin.Context) {
	var filter TransactionQueryFilter
	if err := c.Bind(&filter); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, TransactionListResponse{Error: &e})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	where := filter.model()
	q := models.DB.
		Order("date DESC, created_at DESC").
		Where(&where, queryFields...)

	if filter.AccountID.UUID != uuid.Nil {
		q = q.Where(
			models.DB.
				Where("source_account_id = ?", filter.AccountID.UUID).
				Or("destination_account_id = ?", filter.AccountID.UUID),
		)
	}

	if filter.ConsumerID.UUID != uuid.Nil {
		q = q.
			Joins("JOIN transaction_consumers ON transaction_consumers.transaction_id = transactions.id").
			Where("transaction_consumers.consumer_id = ?", filter.ConsumerID.UUID)
	}

	if filter.Note != "" {
		q = q.Where("note LIKE ?", fmt.Sprintf("%%%s%%", filter.Note))
	} else if slices.Contains(setFields, "Note") {
		q = q.Where("note = ''")
	}

	if !filter.FromDate.IsZero() {
		q = q.Where("date >= ?", filter.FromDate)
	}

	if !filter.UntilDate.IsZero() {
		q = q.Where("date < ?", filter.UntilDate)
	}

	var count int64
	err := q.Model(&models.Transaction{}).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{Error: &e})
		return
	}

	// Default to 50 transactions and allow limit=-1 to return everything
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	if limit >= 0 {
		q = q.Limit(limit)
	}
	q = q.Offset(int(filter.Offset))

	var transactions []models.Transaction
	err = q.Preload("Consumers").Find(&transactions).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{Error: &e})
		return
	}

	data := make([]Transaction, 0, len(transactions))
	for _, transaction := range transactions {
		data = append(data, newTransaction(c, transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	TransactionResponse
// @Failure		404	{object}	TransactionResponse
// @Router			/v1/transactions/{id} [get]
func GetTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	var transaction models.Transaction
	err = models.DB.Preload("Consumers").First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	data := newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &data})
}

// @Summary		Update transaction
// @Description	Updates the note or status of a transaction. All other fields are fixed once the transaction is recorded, void it and record a new one instead.
// @Tags			Transactions
// @Produce		json
// @Success		200			{object}	TransactionResponse
// @Failure		400			{object}	TransactionResponse
// @Failure		404			{object}	TransactionResponse
// @Param			transaction	body		TransactionEditable	true	"Transaction"
// @Router			/v1/transactions/{id} [patch]
func UpdateTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	var transaction models.Transaction
	err = models.DB.Preload("Consumers").First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	// Every field that TransactionCreate declares on top of
	// TransactionEditable is fixed once the transaction is recorded
	immutableFields, err := httputil.GetBodyFields(c, TransactionCreate{})
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, TransactionResponse{Error: &e})
		return
	}
	if len(immutableFields) > 0 {
		e := models.ErrTransactionImmutable.Error()
		c.JSON(http.StatusBadRequest, TransactionResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, TransactionEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, TransactionResponse{Error: &e})
		return
	}

	var data TransactionEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, TransactionResponse{Error: &e})
		return
	}

	update := models.Transaction{Note: data.Note, Status: data.Status}
	err = models.DB.Model(&transaction).Select("", updateFields...).Updates(update).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	response := newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &response})
}

// @Summary		Void transaction
// @Description	Voids a transaction, reversing its effect on the account balances
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Router			/v1/transactions/{id} [delete]
func DeleteTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = ledger.Void(models.DB, transaction.ID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	Publisher.Publish(c.Request.Context(), events.Voided(transaction))

	c.Status(http.StatusNoContent)
}
