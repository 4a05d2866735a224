package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity/internal/core"
)

func generatorTemplate(freq core.Frequency, start string) core.Template {
	return core.Template{
		ID:        "tpl",
		Type:      core.Payment,
		Amount:    decimal.RequireFromString("100"),
		Currency:  "EUR",
		Frequency: freq,
		StartDate: core.MustParseDate(start),
		CompanyID: "co",
		Payee:     "Rent",
		Reference: "R-1",
		Status:    core.TemplateActive,
	}
}

func draftDates(res GenerateResult) []string {
	out := make([]string, 0, len(res.Drafts))
	for _, d := range res.Drafts {
		out = append(out, d.OccurrenceDate.String())
	}
	return out
}

func TestGenerateWeeklyYear(t *testing.T) {
	tpl := generatorTemplate(core.Weekly, "2024-01-01")
	res := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2025-01-01")})

	require.Len(t, res.Drafts, 53)
	assert.False(t, res.Truncated)
	for i := 1; i < len(res.Drafts); i++ {
		gap := res.Drafts[i].DueDate.Sub(res.Drafts[i-1].DueDate.Time).Hours() / 24
		assert.Equal(t, float64(7), gap)
	}
	assert.Equal(t, "2024-12-30", res.LastDate().String())
}

func TestGenerateMonthEndDrift(t *testing.T) {
	tpl := generatorTemplate(core.Monthly, "2024-01-31")
	count := 4
	tpl.OccurrencesCount = &count

	res := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2025-01-31")})
	assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-29", "2024-04-29"}, draftDates(res))
}

func TestGenerateOccurrencesCount(t *testing.T) {
	tpl := generatorTemplate(core.Monthly, "2024-01-15")
	count := 3
	tpl.OccurrencesCount = &count

	res := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2025-01-15")})
	assert.Equal(t, []string{"2024-01-15", "2024-02-15", "2024-03-15"}, draftDates(res))

	existing := map[core.Date]struct{}{}
	for _, d := range res.Drafts {
		existing[*d.OccurrenceDate] = struct{}{}
	}
	again := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2025-01-15"), Existing: existing})
	assert.Empty(t, again.Drafts)
}

func TestGenerateEndDateWinsOverCount(t *testing.T) {
	tpl := generatorTemplate(core.Monthly, "2024-01-10")
	end := core.MustParseDate("2024-06-10")
	count := 2
	tpl.EndDate = &end
	tpl.OccurrencesCount = &count

	res := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2025-01-10")})
	assert.Equal(t, []string{"2024-01-10", "2024-02-10", "2024-03-10", "2024-04-10", "2024-05-10", "2024-06-10"}, draftDates(res))
}

func TestGenerateStopsAtHorizon(t *testing.T) {
	tpl := generatorTemplate(core.Quarterly, "2024-01-01")
	res := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2024-10-01")})
	assert.Equal(t, []string{"2024-01-01", "2024-04-01", "2024-07-01", "2024-10-01"}, draftDates(res))
}

func TestGenerateStartAfterHorizon(t *testing.T) {
	tpl := generatorTemplate(core.Yearly, "2030-01-01")
	res := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2025-01-01")})
	assert.Empty(t, res.Drafts)
	assert.Nil(t, res.LastDate())
	assert.Zero(t, res.Iterations)
}

func TestGenerateSkipsExistingDates(t *testing.T) {
	tpl := generatorTemplate(core.Monthly, "2024-01-01")
	existing := map[core.Date]struct{}{
		core.MustParseDate("2024-02-01"): {},
		core.MustParseDate("2024-03-01"): {},
	}
	res := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2024-05-01"), Existing: existing})
	assert.Equal(t, []string{"2024-01-01", "2024-04-01", "2024-05-01"}, draftDates(res))
	assert.Equal(t, 5, res.Iterations)
}

func TestGenerateNotBeforeSuppressesPast(t *testing.T) {
	tpl := generatorTemplate(core.Monthly, "2024-01-01")
	count := 4
	tpl.OccurrencesCount = &count
	today := core.MustParseDate("2024-03-01")
	existing := map[core.Date]struct{}{core.MustParseDate("2024-01-01"): {}}

	res := Generate(tpl, GenerateOptions{
		Horizon:   core.MustParseDate("2025-03-01"),
		Existing:  existing,
		NotBefore: &today,
	})
	// Feb is suppressed and not counted, so three new slots fill the limit of four.
	assert.Equal(t, []string{"2024-03-01", "2024-04-01", "2024-05-01"}, draftDates(res))
}

func TestGenerateTruncatesAtMaxIterations(t *testing.T) {
	tpl := generatorTemplate(core.Weekly, "2000-01-01")
	res := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2040-01-01")})

	assert.True(t, res.Truncated)
	assert.Equal(t, MaxIterations, res.Iterations)
	assert.Len(t, res.Drafts, MaxIterations)
}

func TestGenerateExactlyAtCapIsNotTruncated(t *testing.T) {
	tpl := generatorTemplate(core.Weekly, "2000-01-01")
	count := MaxIterations
	tpl.OccurrencesCount = &count
	res := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2040-01-01")})

	assert.False(t, res.Truncated)
	assert.Len(t, res.Drafts, MaxIterations)
}

func TestGenerateDraftFields(t *testing.T) {
	tpl := generatorTemplate(core.Monthly, "2024-01-01")
	tpl.Type = core.Earning
	tpl.CategoryID = "cat"
	res := Generate(tpl, GenerateOptions{Horizon: core.MustParseDate("2024-01-01")})

	require.Len(t, res.Drafts, 1)
	d := res.Drafts[0]
	assert.Equal(t, core.Earning, d.Type)
	assert.True(t, d.Amount.Equal(tpl.Amount))
	assert.Equal(t, "EUR", d.Currency)
	assert.Equal(t, "co", d.CompanyID)
	assert.Equal(t, "Rent", d.Payee)
	assert.Equal(t, "R-1", d.Reference)
	assert.Equal(t, "cat", d.CategoryID)
	assert.Equal(t, core.StatusToPay, d.Status)
	assert.True(t, d.IsRecurring)
	assert.False(t, d.IsException)
	assert.Equal(t, d.DueDate, *d.OccurrenceDate)
	assert.Empty(t, d.ID)
	assert.Nil(t, d.RecurringTemplateID)
}
