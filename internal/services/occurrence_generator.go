package services

import (
	"liquidity/internal/core"
)

// MaxIterations bounds a single Generate call.
const MaxIterations = 1000

// GenerateOptions describes one generation pass over a template.
type GenerateOptions struct {
	// Horizon is the last date that may be emitted.
	Horizon core.Date
	// Existing holds occurrence dates already persisted for the template.
	Existing map[core.Date]struct{}
	// NotBefore suppresses slots earlier than the given date. Suppressed slots do
	// not count towards the occurrences limit.
	NotBefore *core.Date
}

// GenerateResult holds the drafts of a pass. Drafts carry no ID and no template
// link; the engine stamps both before inserting.
type GenerateResult struct {
	Drafts     []core.Transaction
	Iterations int
	Truncated  bool
}

// LastDate returns the occurrence date of the final draft, or nil when nothing was emitted.
func (r GenerateResult) LastDate() *core.Date {
	if len(r.Drafts) == 0 {
		return nil
	}
	return r.Drafts[len(r.Drafts)-1].OccurrenceDate
}

// Generate walks the template's schedule from its start date and returns a draft
// for every slot up to the horizon that is not in opts.Existing. It is pure.
func Generate(t core.Template, opts GenerateOptions) GenerateResult {
	var res GenerateResult

	endDate := t.EndDate
	limit := t.EffectiveOccurrencesCount()
	current := t.StartDate

	for {
		if current.After(opts.Horizon) {
			break
		}
		if endDate != nil && current.After(*endDate) {
			break
		}
		if limit != nil && len(opts.Existing)+len(res.Drafts) >= *limit {
			break
		}
		if res.Iterations >= MaxIterations {
			res.Truncated = true
			break
		}
		res.Iterations++

		_, exists := opts.Existing[current]
		suppressed := opts.NotBefore != nil && current.Before(*opts.NotBefore)
		if !exists && !suppressed {
			res.Drafts = append(res.Drafts, draftFor(t, current))
		}

		current = NextOccurrence(current, t.Frequency)
	}

	return res
}

func draftFor(t core.Template, date core.Date) core.Transaction {
	occurrence := date
	return core.Transaction{
		Type:           t.Type,
		Amount:         t.Amount,
		Currency:       t.Currency,
		DueDate:        date,
		CompanyID:      t.CompanyID,
		Payee:          t.Payee,
		Reference:      t.Reference,
		CategoryID:     t.CategoryID,
		Status:         core.StatusToPay,
		IsRecurring:    true,
		IsException:    false,
		OccurrenceDate: &occurrence,
	}
}
