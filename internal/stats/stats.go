// Package stats computes read-only aggregations over transactions that
// are already loaded into memory.
//
// All functions are pure: the same input slice and parameters always
// produce the same result. Callers get snapshot semantics for free, a
// transaction voided concurrently does not change a sum that was
// already computed from the slice.
package stats

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/moneta-app/backend/internal/models"
	"github.com/shopspring/decimal"
)

// Period is a calendar range used for aggregation boundaries.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Valid reports whether the period is one of the known periods.
func (p Period) Valid() bool {
	return p == PeriodDay || p == PeriodWeek || p == PeriodMonth || p == PeriodYear
}

// Options configures calendar semantics for period boundaries.
type Options struct {
	// WeekStart is the first day of the week. The zero value is
	// time.Sunday; use DefaultOptions for a Monday-based week or
	// ForLocale to derive it from a BCP 47 tag.
	WeekStart time.Weekday
}

// DefaultOptions returns options with a Monday-based week.
func DefaultOptions() Options {
	return Options{WeekStart: time.Monday}
}

// CategoryTotal is the sum of all amounts for one category.
type CategoryTotal struct {
	CategoryID uuid.UUID       `json:"categoryId"`
	Sum        decimal.Decimal `json:"sum"`
}

// Totals holds the income and expense sums for a time range.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"` // Income - Expense
}

// TotalsByCategory groups the transactions of the given type by
// category and sums their amounts.
//
// The result is sorted by sum, descending. Transactions of equal sum
// keep the order in which their categories first appear in the input,
// so the output is deterministic for a given input order.
func TotalsByCategory(transactions []models.Transaction, t models.TransactionType) []CategoryTotal {
	sums := make(map[uuid.UUID]decimal.Decimal)
	order := make([]uuid.UUID, 0)

	for _, transaction := range transactions {
		if transaction.Type != t || transaction.CategoryID == nil {
			continue
		}

		id := *transaction.CategoryID
		if _, ok := sums[id]; !ok {
			order = append(order, id)
		}
		sums[id] = sums[id].Add(transaction.Amount)
	}

	totals := make([]CategoryTotal, 0, len(order))
	for _, id := range order {
		totals = append(totals, CategoryTotal{CategoryID: id, Sum: sums[id]})
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Sum.GreaterThan(totals[j].Sum)
	})

	return totals
}

// DailyTotals sums income and expenses for all transactions with a date
// in [start of day, start of next day) in the given location.
func DailyTotals(transactions []models.Transaction, day time.Time, location *time.Location) Totals {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, location)
	return sumRange(transactions, start, start.AddDate(0, 0, 1))
}

// PeriodTotals generalizes DailyTotals to a calendar period containing
// the anchor time. Boundaries are computed in the anchor's location.
func PeriodTotals(transactions []models.Transaction, period Period, anchor time.Time, opts Options) Totals {
	start, end := Bounds(period, anchor, opts)
	return sumRange(transactions, start, end)
}

// Bounds returns the half-open interval [start, end) of the calendar
// period containing the anchor time.
func Bounds(period Period, anchor time.Time, opts Options) (start, end time.Time) {
	location := anchor.Location()

	switch period {
	case PeriodWeek:
		day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, location)

		// Walk back to the first day of the week
		offset := (int(day.Weekday()) - int(opts.WeekStart) + 7) % 7
		start = day.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 7)
	case PeriodMonth:
		start = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, location)
		end = start.AddDate(0, 1, 0)
	case PeriodYear:
		start = time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, location)
		end = start.AddDate(1, 0, 0)
	default:
		start = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, location)
		end = start.AddDate(0, 0, 1)
	}

	return start, end
}

// sumRange sums income and expenses for all transactions with a date in
// [start, end). Transfers move money between accounts without changing
// the overall total, they are not part of the sums.
func sumRange(transactions []models.Transaction, start, end time.Time) Totals {
	totals := Totals{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}

	for _, transaction := range transactions {
		if transaction.Date.Before(start) || !transaction.Date.Before(end) {
			continue
		}

		switch transaction.Type {
		case models.TypeIncome:
			totals.Income = totals.Income.Add(transaction.Amount)
		case models.TypeExpense:
			totals.Expense = totals.Expense.Add(transaction.Amount)
		}
	}

	totals.Net = totals.Income.Sub(totals.Expense)
	return totals
}
