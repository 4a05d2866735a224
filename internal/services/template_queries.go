package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"liquidity/internal/core"
)

// TemplateSummary is a template with the counts shown next to it in listings.
type TemplateSummary struct {
	core.Template
	OccurrenceCount int    `json:"occurrenceCount"`
	UnpaidCount     int    `json:"unpaidCount"`
	RemainingCount  *int   `json:"remainingCount,omitempty"`
	Description     string `json:"description"`
}

func (e *Engine) GetTemplate(ctx context.Context, id string) (*TemplateSummary, error) {
	t, err := e.store.Templates().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := e.store.Transactions().ListByTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	s := summarize(*t, rows)
	return &s, nil
}

// ListTemplates returns every template, newest first.
func (e *Engine) ListTemplates(ctx context.Context) ([]TemplateSummary, error) {
	templates, err := e.store.Templates().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TemplateSummary, 0, len(templates))
	for _, t := range templates {
		rows, err := e.store.Transactions().ListByTemplate(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(t, rows))
	}
	return out, nil
}

// ListOccurrences returns a template's rows ordered by due date.
func (e *Engine) ListOccurrences(ctx context.Context, templateID string) ([]core.Transaction, error) {
	if _, err := e.store.Templates().Get(ctx, templateID); err != nil {
		return nil, err
	}
	rows, err := e.store.Transactions().ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []core.Transaction{}
	}
	return rows, nil
}

func summarize(t core.Template, rows []core.Transaction) TemplateSummary {
	s := TemplateSummary{
		Template:        t,
		OccurrenceCount: len(rows),
		UnpaidCount: lo.CountBy(rows, func(tx core.Transaction) bool {
			return tx.Status.IsUnpaid()
		}),
	}
	if limit := t.EffectiveOccurrencesCount(); limit != nil {
		remaining := max(*limit-len(rows), 0)
		s.RemainingCount = &remaining
	}
	s.Description = describe(t, s.RemainingCount)
	return s
}

func describe(t core.Template, remaining *int) string {
	freq := frequencyLabel(t.Frequency)
	switch {
	case t.EndDate != nil:
		return fmt.Sprintf("%s (until %s)", freq, t.EndDate)
	case remaining != nil:
		return fmt.Sprintf("%s (%d remaining)", freq, *remaining)
	default:
		return freq + " (ongoing)"
	}
}

func frequencyLabel(f core.Frequency) string {
	if !f.IsValid() {
		f = core.Monthly
	}
	s := string(f)
	return strings.ToUpper(s[:1]) + s[1:]
}
