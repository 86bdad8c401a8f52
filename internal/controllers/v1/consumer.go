package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneta-app/backend/internal/httputil"
	"github.com/moneta-app/backend/internal/models"
)

// RegisterConsumerRoutes registers the routes for consumers with
// the RouterGroup that is passed.
func RegisterConsumerRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsConsumerList)
		r.GET("", GetConsumers)
		r.POST("", CreateConsumer)
	}

	// Consumer with ID
	{
		r.OPTIONS("/:id", OptionsConsumerDetail)
		r.GET("/:id", GetConsumer)
		r.PATCH("/:id", UpdateConsumer)
		r.DELETE("/:id", DeleteConsumer)
	}

	// Default consumer
	{
		r.OPTIONS("/:id/default", OptionsConsumerDefault)
		r.POST("/:id/default", SetDefaultConsumer)
	}
}

type ConsumerEditable struct {
	Name   string `json:"name" example:"Jane"` // Name of the consumer
	Avatar []byte `json:"avatar" swaggertype:"string" format:"base64"`
}

func (editable ConsumerEditable) model() models.Consumer {
	return models.Consumer{
		Name:   editable.Name,
		Avatar: editable.Avatar,
	}
}

type ConsumerLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/consumers/d1b9d9c4-8f5e-4b1c-9a8e-5e5f0f5d54b6"`              // The consumer itself
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions?consumer=d1b9d9c4-8f5e-4b1c-9a8e-5e5f0f5d54b6"` // Transactions the consumer participates in
}

// Consumer is the API representation of a consumer.
type Consumer struct {
	models.DefaultModel
	ConsumerEditable
	IsDefault bool          `json:"isDefault" example:"true"` // Is this the default consumer for new transactions?
	Links     ConsumerLinks `json:"links"`
}

func newConsumer(c *gin.Context, model models.Consumer) Consumer {
	url := c.GetString(string(models.ContextURL))

	return Consumer{
		DefaultModel: model.DefaultModel,
		ConsumerEditable: ConsumerEditable{
			Name:   model.Name,
			Avatar: model.Avatar,
		},
		IsDefault: model.IsDefault,
		Links: ConsumerLinks{
			Self:         fmt.Sprintf("%s/v1/consumers/%s", url, model.ID),
			Transactions: fmt.Sprintf("%s/v1/transactions?consumer=%s", url, model.ID),
		},
	}
}

type ConsumerResponse struct {
	Data  *Consumer `json:"data"`                                                          // The Consumer data, if the request was successful
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ConsumerListResponse struct {
	Data       []Consumer  `json:"data"`                                                          // List of consumers
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Consumers
// @Success		204
// @Router			/v1/consumers [options]
func OptionsConsumerList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Consumers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Router			/v1/consumers/{id} [options]
func OptionsConsumerDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.First(&models.Consumer{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Consumers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Router			/v1/consumers/{id}/default [options]
func OptionsConsumerDefault(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.First(&models.Consumer{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Create consumer
// @Description	Creates a new consumer
// @Tags			Consumers
// @Produce		json
// @Success		201			{object}	ConsumerResponse
// @Failure		400			{object}	ConsumerResponse
// @Failure		500			{object}	ConsumerResponse
// @Param			consumer	body		ConsumerEditable	true	"Consumer"
// @Router			/v1/consumers [post]
func CreateConsumer(c *gin.Context) {
	var editable ConsumerEditable
	if err := httputil.BindData(c, &editable); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ConsumerResponse{Error: &e})
		return
	}

	consumer := editable.model()
	err := models.DB.Create(&consumer).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumerResponse{Error: &e})
		return
	}

	data := newConsumer(c, consumer)
	c.JSON(http.StatusCreated, ConsumerResponse{Data: &data})
}

// @Summary		Get consumers
// @Description	Returns a list of consumers
// @Tags			Consumers
// @Produce		json
// @Success		200	{object}	ConsumerListResponse
// @Failure		500	{object}	ConsumerListResponse
// @Param			name	query	string	false	"Filter by name"
// @Router			/v1/consumers [get]
func GetConsumers(c *gin.Context) {
	var filter struct {
		Name string `form:"name"`
	}
	if err := c.Bind(&filter); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ConsumerListResponse{Error: &e})
		return
	}

	q := models.DB.Order("name ASC")

	if filter.Name != "" {
		q = q.Where("name LIKE ?", fmt.Sprintf("%%%s%%", filter.Name))
	}

	var consumers []models.Consumer
	err := q.Find(&consumers).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumerListResponse{Error: &e})
		return
	}

	data := make([]Consumer, 0, len(consumers))
	for _, consumer := range consumers {
		data = append(data, newConsumer(c, consumer))
	}

	c.JSON(http.StatusOK, ConsumerListResponse{
		Data: data,
		Pagination: &Pagination{
			Count: len(data),
			Total: int64(len(data)),
			Limit: -1,
		},
	})
}

// @Summary		Get consumer
// @Description	Returns a specific consumer
// @Tags			Consumers
// @Produce		json
// @Success		200	{object}	ConsumerResponse
// @Failure		400	{object}	ConsumerResponse
// @Failure		404	{object}	ConsumerResponse
// @Router			/v1/consumers/{id} [get]
func GetConsumer(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumerResponse{Error: &e})
		return
	}

	var consumer models.Consumer
	err = models.DB.First(&consumer, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumerResponse{Error: &e})
		return
	}

	data := newConsumer(c, consumer)
	c.JSON(http.StatusOK, ConsumerResponse{Data: &data})
}

// @Summary		Update consumer
// @Description	Updates a consumer. Only values to be updated need to be specified.
// @Tags			Consumers
// @Produce		json
// @Success		200			{object}	ConsumerResponse
// @Failure		400			{object}	ConsumerResponse
// @Failure		404			{object}	ConsumerResponse
// @Param			consumer	body		ConsumerEditable	true	"Consumer"
// @Router			/v1/consumers/{id} [patch]
func UpdateConsumer(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumerResponse{Error: &e})
		return
	}

	var consumer models.Consumer
	err = models.DB.First(&consumer, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumerResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, ConsumerEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ConsumerResponse{Error: &e})
		return
	}

	var data ConsumerEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ConsumerResponse{Error: &e})
		return
	}

	err = models.DB.Model(&consumer).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumerResponse{Error: &e})
		return
	}

	response := newConsumer(c, consumer)
	c.JSON(http.StatusOK, ConsumerResponse{Data: &response})
}

// @Summary		Set default consumer
// @Description	Marks the consumer as the default one. At most one consumer is the default at any time, the flag is cleared on all others.
// @Tags			Consumers
// @Produce		json
// @Success		200	{object}	ConsumerResponse
// @Failure		400	{object}	ConsumerResponse
// @Failure		404	{object}	ConsumerResponse
// @Router			/v1/consumers/{id}/default [post]
func SetDefaultConsumer(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumerResponse{Error: &e})
		return
	}

	var consumer models.Consumer
	err = models.DB.First(&consumer, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumerResponse{Error: &e})
		return
	}

	err = consumer.SetDefault(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumerResponse{Error: &e})
		return
	}

	data := newConsumer(c, consumer)
	c.JSON(http.StatusOK, ConsumerResponse{Data: &data})
}

// @Summary		Delete consumer
// @Description	Deletes a consumer. Transactions the consumer participated in are kept.
// @Tags			Consumers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Router			/v1/consumers/{id} [delete]
func DeleteConsumer(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var consumer models.Consumer
	err = models.DB.First(&consumer, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Delete(&consumer).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
