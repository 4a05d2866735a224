package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"liquidity/internal/core"
	ierr "liquidity/internal/errors"
)

// ForecastBucket totals the unpaid rows of one month in one currency. Amounts are
// never converted between currencies.
type ForecastBucket struct {
	Month    string          `json:"month"`
	Currency string          `json:"currency"`
	Payments decimal.Decimal `json:"payments"`
	Earnings decimal.Decimal `json:"earnings"`
	Net      decimal.Decimal `json:"net"`
	Count    int             `json:"count"`
}

// Forecast sums to_pay and postponed rows due in [from, to] by month and currency.
// Paid and skipped rows are left out.
func (e *Engine) Forecast(ctx context.Context, from, to core.Date) ([]ForecastBucket, error) {
	if from.IsZero() || to.IsZero() {
		return nil, ierr.NewError("forecast range requires from and to").
			WithHint("from and to are required (YYYY-MM-DD)").
			Mark(ierr.ErrValidation)
	}
	if to.Before(from) {
		return nil, ierr.NewError("forecast range is inverted").
			WithHint("to must not be before from").
			WithReportableDetails(map[string]any{"from": from.String(), "to": to.String()}).
			Mark(ierr.ErrValidation)
	}

	rows, err := e.store.Transactions().ListDueBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	type key struct{ month, currency string }
	buckets := map[key]*ForecastBucket{}
	for _, tx := range rows {
		if !tx.Status.IsUnpaid() {
			continue
		}
		k := key{month: tx.DueDate.MonthKey(), currency: tx.Currency}
		b, ok := buckets[k]
		if !ok {
			b = &ForecastBucket{Month: k.month, Currency: k.currency}
			buckets[k] = b
		}
		switch tx.Type {
		case core.Earning:
			b.Earnings = b.Earnings.Add(tx.Amount)
		default:
			b.Payments = b.Payments.Add(tx.Amount)
		}
		b.Count++
	}

	out := make([]ForecastBucket, 0, len(buckets))
	for _, b := range buckets {
		b.Net = b.Earnings.Sub(b.Payments)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Currency < out[j].Currency
	})
	return out, nil
}
