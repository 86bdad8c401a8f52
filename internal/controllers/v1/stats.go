package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moneta-app/backend/internal/httputil"
	"github.com/moneta-app/backend/internal/models"
	"github.com/moneta-app/backend/internal/stats"
	"github.com/moneta-app/backend/internal/types"
)

// RegisterStatsRoutes registers the routes for statistics with
// the RouterGroup that is passed.
func RegisterStatsRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/categories", OptionsStatsCategories)
	r.GET("/categories", GetStatsCategories)

	r.OPTIONS("/period", OptionsStatsPeriod)
	r.GET("/period", GetStatsPeriod)
}

type CategoryStatsResponse struct {
	Data  []stats.CategoryTotal `json:"data"`                                           // Per-category sums, largest first
	Error *string               `json:"error" example:"the type parameter must be one of: income, expense, transfer"` // The error, if any occurred
}

// PeriodStats are the income and expense sums for one calendar period.
type PeriodStats struct {
	stats.Totals
	Period stats.Period `json:"period" example:"month"`
	Start  time.Time    `json:"start" example:"2024-02-01T00:00:00Z"` // Start of the period, inclusive
	End    time.Time    `json:"end" example:"2024-03-01T00:00:00Z"`   // End of the period, exclusive
}

type PeriodStatsResponse struct {
	Data  *PeriodStats `json:"data"`                                                              // The sums, if the request was successful
	Error *string      `json:"error" example:"the period parameter must be one of: day, week, month, year"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Stats
// @Success		204
// @Router			/v1/stats/categories [options]
func OptionsStatsCategories(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Stats
// @Success		204
// @Router			/v1/stats/period [options]
func OptionsStatsPeriod(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get category totals
// @Description	Returns the sum of all transactions of the requested type, grouped by category and sorted by sum, largest first
// @Tags			Stats
// @Produce		json
// @Success		200	{object}	CategoryStatsResponse
// @Failure		400	{object}	CategoryStatsResponse
// @Failure		500	{object}	CategoryStatsResponse
// @Param			type		query	string	true	"Transaction type to aggregate"
// @Param			fromDate	query	string	false	"Only transactions at or after this date"
// @Param			untilDate	query	string	false	"Only transactions before this date"
// @Router			/v1/stats/categories [get]
func GetStatsCategories(c *gin.Context) {
	var filter struct {
		Type      models.TransactionType `form:"type"`
		FromDate  time.Time              `form:"fromDate"`
		UntilDate time.Time              `form:"untilDate"`
	}
	if err := c.Bind(&filter); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, CategoryStatsResponse{Error: &e})
		return
	}

	if !filter.Type.Valid() {
		e := errStatsTypeInvalid.Error()
		c.JSON(http.StatusBadRequest, CategoryStatsResponse{Error: &e})
		return
	}

	q := models.DB
	if !filter.FromDate.IsZero() {
		q = q.Where("date >= ?", filter.FromDate)
	}
	if !filter.UntilDate.IsZero() {
		q = q.Where("date < ?", filter.UntilDate)
	}

	var transactions []models.Transaction
	err := q.Find(&transactions).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryStatsResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, CategoryStatsResponse{
		Data: stats.TotalsByCategory(transactions, filter.Type),
	})
}

// @Summary		Get period totals
// @Description	Returns the income and expense sums for the calendar period containing the anchor time. Transfers are not part of the sums.
// @Tags			Stats
// @Produce		json
// @Success		200	{object}	PeriodStatsResponse
// @Failure		400	{object}	PeriodStatsResponse
// @Failure		500	{object}	PeriodStatsResponse
// @Param			period	query	string	true	"One of day, week, month, year"
// @Param			anchor	query	string	false	"A time inside the requested period. Defaults to now."
// @Param			month	query	string	false	"A month in YYYY-MM format, shorthand for an anchor inside that month"
// @Param			locale	query	string	false	"BCP 47 tag used to determine the first day of the week, e.g. en-US"
// @Router			/v1/stats/period [get]
func GetStatsPeriod(c *gin.Context) {
	var filter struct {
		Period stats.Period `form:"period"`
		Anchor time.Time    `form:"anchor"`
		Month  string       `form:"month"`
		Locale string       `form:"locale"`
	}
	if err := c.Bind(&filter); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, PeriodStatsResponse{Error: &e})
		return
	}

	if !filter.Period.Valid() {
		e := errStatsPeriodInvalid.Error()
		c.JSON(http.StatusBadRequest, PeriodStatsResponse{Error: &e})
		return
	}

	anchor := filter.Anchor
	if filter.Month != "" {
		month, err := types.ParseMonth(filter.Month)
		if err != nil {
			e := err.Error()
			c.JSON(http.StatusBadRequest, PeriodStatsResponse{Error: &e})
			return
		}
		anchor = time.Time(month)
	}
	if anchor.IsZero() {
		anchor = time.Now().In(time.UTC)
	}

	opts := stats.DefaultOptions()
	if filter.Locale != "" {
		opts = stats.ParseLocale(filter.Locale)
	}

	var transactions []models.Transaction
	err := models.DB.Find(&transactions).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PeriodStatsResponse{Error: &e})
		return
	}

	start, end := stats.Bounds(filter.Period, anchor, opts)
	data := PeriodStats{
		Totals: stats.PeriodTotals(transactions, filter.Period, anchor, opts),
		Period: filter.Period,
		Start:  start,
		End:    end,
	}

	c.JSON(http.StatusOK, PeriodStatsResponse{Data: &data})
}
