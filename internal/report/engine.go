// Package report is the aggregation engine: pure, deterministic
// transformations from a snapshot of transactions (optionally joined with
// budgets) into the derived views every dashboard and chart renders. It
// performs no I/O and never talks to the store.
package report

import (
	"sort"
	"time"

	"tally/internal/core"
)

// NoCategory is the sentinel returned by TopCategory for an empty snapshot.
// "none" sits outside the closed category set, so callers can always tell it
// apart from a real result.
const NoCategory core.Category = "none"

type (
	// CategoryTotal pairs a category with its summed spend. Collections of
	// CategoryTotal keep first-seen scan order; an ordered list rather than
	// a map so tie-breaks stay deterministic.
	CategoryTotal struct {
		Category core.Category `json:"category"`
		Total    core.Money    `json:"total"`
	}

	// MonthBucket is one point of the monthly time series. Year and Month
	// are the true chronological key; Label is the display form ("Jan 24").
	MonthBucket struct {
		Year  int        `json:"year"`
		Month time.Month `json:"month"`
		Label string     `json:"label"`
		Total core.Money `json:"total"`
	}

	// BudgetRow reconciles one category's ceiling against its actual spend.
	BudgetRow struct {
		Category core.Category `json:"category"`
		Budget   core.Money    `json:"budget"`
		Actual   core.Money    `json:"actual"`
	}
)

// Engine aggregates transaction snapshots. It is stateless; every method is
// a pure function of its inputs.
type Engine struct {
	skipInvalid bool
}

// Option configures an Engine.
type Option func(*Engine)

// SkipInvalid makes the engine drop malformed records instead of failing.
// Dropping is never the default: without this option any invalid record
// aborts the aggregation with a ValidationError naming record and field.
func SkipInvalid() Option {
	return func(e *Engine) { e.skipInvalid = true }
}

// New returns an aggregation engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sift validates the snapshot, returning the records to aggregate.
func (e *Engine) sift(txs []core.Transaction) ([]core.Transaction, error) {
	out := txs
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			if !e.skipInvalid {
				return nil, err
			}
			// First invalid record: switch to a filtered copy.
			out = make([]core.Transaction, i, len(txs))
			copy(out, txs[:i])
			for _, rest := range txs[i:] {
				if rest.Validate() == nil {
					out = append(out, rest)
				}
			}
			break
		}
	}
	return out, nil
}

// TotalSpend sums every transaction amount. Order is irrelevant to the
// result; an empty snapshot yields zero.
func (e *Engine) TotalSpend(txs []core.Transaction) (core.Money, error) {
	valid, err := e.sift(txs)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, tx := range valid {
		total = total.Add(tx.Amount)
	}
	return total, nil
}

// MonthTotal sums the transactions falling in the same calendar month and
// year as ref. The comparison is by calendar bucket, never an elapsed-day
// window: the 1st of the current month counts, a transaction 29 days ago in
// the previous month does not.
func (e *Engine) MonthTotal(txs []core.Transaction, ref time.Time) (core.Money, error) {
	valid, err := e.sift(txs)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, tx := range valid {
		if tx.Date.Month() == ref.Month() && tx.Date.Year() == ref.Year() {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// CategoryTotals groups the snapshot by category, summing amounts. The
// result preserves the order categories were first seen while scanning the
// list; categories without transactions are absent.
func (e *Engine) CategoryTotals(txs []core.Transaction) ([]CategoryTotal, error) {
	valid, err := e.sift(txs)
	if err != nil {
		return nil, err
	}
	index := make(map[core.Category]int, len(core.Categories()))
	totals := make([]CategoryTotal, 0, len(core.Categories()))
	for _, tx := range valid {
		i, seen := index[tx.Category]
		if !seen {
			i = len(totals)
			index[tx.Category] = i
			totals = append(totals, CategoryTotal{Category: tx.Category})
		}
		totals[i].Total = totals[i].Total.Add(tx.Amount)
	}
	return totals, nil
}

// TopCategory selects the entry with the maximum total. Ties keep the
// earlier entry (first-seen order). An empty input returns the NoCategory
// sentinel with a zero total.
func TopCategory(totals []CategoryTotal) CategoryTotal {
	if len(totals) == 0 {
		return CategoryTotal{Category: NoCategory}
	}
	top := totals[0]
	for _, ct := range totals[1:] {
		if ct.Total.Cents > top.Total.Cents {
			top = ct
		}
	}
	return top
}

// Rank sorts category totals descending by amount. The sort is stable so
// equal totals keep their first-seen order.
func Rank(totals []CategoryTotal) []CategoryTotal {
	ranked := make([]CategoryTotal, len(totals))
	copy(ranked, totals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total.Cents > ranked[j].Total.Cents
	})
	return ranked
}

// MonthlySeries groups the snapshot by calendar month and year, summing
// amounts per bucket. The series is sorted chronologically by the retained
// year/month key — never by label text, which would put "Jan 24" before
// "Dec 23".
func (e *Engine) MonthlySeries(txs []core.Transaction) ([]MonthBucket, error) {
	valid, err := e.sift(txs)
	if err != nil {
		return nil, err
	}
	type key struct {
		year  int
		month time.Month
	}
	index := make(map[key]int)
	series := make([]MonthBucket, 0)
	for _, tx := range valid {
		k := key{year: tx.Date.Year(), month: tx.Date.Time.Month()}
		i, seen := index[k]
		if !seen {
			i = len(series)
			index[k] = i
			series = append(series, MonthBucket{
				Year:  k.year,
				Month: k.month,
				Label: time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 06"),
			})
		}
		series[i].Total = series[i].Total.Add(tx.Amount)
	}
	sort.SliceStable(series, func(i, j int) bool {
		if series[i].Year != series[j].Year {
			return series[i].Year < series[j].Year
		}
		return series[i].Month < series[j].Month
	})
	return series, nil
}

// Reconcile pairs each category's budget ceiling with its actual spend. The
// result covers the union of budgeted categories and categories with spend:
// spend without a budget appears with a zero ceiling, a budget without spend
// appears with zero actual. Budgeted categories come first, then spend-only
// ones, each group in input order.
func Reconcile(totals []CategoryTotal, budgets []core.Budget) []BudgetRow {
	index := make(map[core.Category]int, len(budgets)+len(totals))
	rows := make([]BudgetRow, 0, len(budgets)+len(totals))
	for _, b := range budgets {
		if _, seen := index[b.Category]; seen {
			continue
		}
		index[b.Category] = len(rows)
		rows = append(rows, BudgetRow{Category: b.Category, Budget: b.Amount})
	}
	for _, ct := range totals {
		i, seen := index[ct.Category]
		if !seen {
			i = len(rows)
			index[ct.Category] = i
			rows = append(rows, BudgetRow{Category: ct.Category})
		}
		rows[i].Actual = rows[i].Actual.Add(ct.Total)
	}
	return rows
}
