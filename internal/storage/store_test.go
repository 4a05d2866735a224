package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity/internal/core"
	ierr "liquidity/internal/errors"
	"liquidity/internal/storage"
	"liquidity/internal/storage/memory"
)

func stores(t *testing.T) map[string]storage.Store {
	t.Helper()
	sq, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]storage.Store{
		"sqlite": sq,
		"memory": memory.New(),
	}
}

func sampleTemplate(id string) core.Template {
	count := 3
	return core.Template{
		ID:               id,
		Type:             core.Payment,
		Amount:           decimal.RequireFromString("12.50"),
		Currency:         "EUR",
		Frequency:        core.Monthly,
		StartDate:        core.MustParseDate("2024-01-31"),
		OccurrencesCount: &count,
		CompanyID:        "co-1",
		Payee:            "Landlord",
		Status:           core.TemplateActive,
		CreatedAt:        time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func occurrence(id, templateID, date string, status core.TransactionStatus) core.Transaction {
	d := core.MustParseDate(date)
	return core.Transaction{
		ID:                  id,
		Type:                core.Payment,
		Amount:              decimal.RequireFromString("12.50"),
		Currency:            "EUR",
		DueDate:             d,
		CompanyID:           "co-1",
		Payee:               "Landlord",
		Status:              status,
		RecurringTemplateID: &templateID,
		IsRecurring:         true,
		OccurrenceDate:      &d,
		CreatedAt:           time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tpl := sampleTemplate("tpl-1")
			tpl.Reference = "INV-1"
			require.NoError(t, s.Templates().Create(ctx, tpl))

			got, err := s.Templates().Get(ctx, "tpl-1")
			require.NoError(t, err)
			assert.True(t, tpl.Amount.Equal(got.Amount))
			assert.Equal(t, tpl.StartDate, got.StartDate)
			assert.Nil(t, got.EndDate)
			require.NotNil(t, got.OccurrencesCount)
			assert.Equal(t, 3, *got.OccurrencesCount)
			assert.Equal(t, "INV-1", got.Reference)
			assert.Empty(t, got.CategoryID)
			assert.True(t, tpl.CreatedAt.Equal(got.CreatedAt))

			last := core.MustParseDate("2024-03-29")
			require.NoError(t, s.Templates().UpdateLastGenerated(ctx, "tpl-1", &last))
			require.NoError(t, s.Templates().UpdateStatus(ctx, "tpl-1", core.TemplatePaused))

			got, err = s.Templates().Get(ctx, "tpl-1")
			require.NoError(t, err)
			require.NotNil(t, got.LastGeneratedDate)
			assert.Equal(t, last, *got.LastGeneratedDate)
			assert.Equal(t, core.TemplatePaused, got.Status)

			active, err := s.Templates().ListByStatus(ctx, core.TemplateActive)
			require.NoError(t, err)
			assert.Empty(t, active)

			require.NoError(t, s.Templates().Delete(ctx, "tpl-1"))
			_, err = s.Templates().Get(ctx, "tpl-1")
			assert.True(t, ierr.IsNotFound(err))
		})
	}
}

func TestMissingRowsAreNotFound(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.True(t, ierr.IsNotFound(s.Templates().UpdateStatus(ctx, "nope", core.TemplatePaused)))
			assert.True(t, ierr.IsNotFound(s.Templates().Delete(ctx, "nope")))
			_, err := s.Transactions().Get(ctx, "nope")
			assert.True(t, ierr.IsNotFound(err))
			assert.True(t, ierr.IsNotFound(s.Transactions().Update(ctx, occurrence("nope", "t", "2024-01-01", core.StatusToPay))))
		})
	}
}

func TestInsertOccurrencesIgnoresDuplicates(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Templates().Create(ctx, sampleTemplate("tpl-1")))

			n, err := s.Transactions().InsertOccurrences(ctx, []core.Transaction{
				occurrence("a", "tpl-1", "2024-01-31", core.StatusToPay),
				occurrence("b", "tpl-1", "2024-02-29", core.StatusToPay),
			})
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			n, err = s.Transactions().InsertOccurrences(ctx, []core.Transaction{
				occurrence("c", "tpl-1", "2024-02-29", core.StatusToPay),
				occurrence("d", "tpl-1", "2024-03-29", core.StatusToPay),
			})
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			dates, err := s.Transactions().OccurrenceDates(ctx, "tpl-1")
			require.NoError(t, err)
			assert.Len(t, dates, 3)
			assert.Contains(t, dates, core.MustParseDate("2024-03-29"))

			rows, err := s.Transactions().ListByTemplate(ctx, "tpl-1")
			require.NoError(t, err)
			require.Len(t, rows, 3)
			assert.Equal(t, []string{"a", "b", "d"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
		})
	}
}

func TestOneOffRowsShareNoKey(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			oneOff := func(id string) core.Transaction {
				return core.Transaction{
					ID: id, Type: core.Earning, Amount: decimal.NewFromInt(100), Currency: "EUR",
					DueDate: core.MustParseDate("2024-05-01"), Payee: "Client", Status: core.StatusToPay,
				}
			}
			n, err := s.Transactions().InsertOccurrences(ctx, []core.Transaction{oneOff("x"), oneOff("y")})
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			rows, err := s.Transactions().ListDueBetween(ctx, core.MustParseDate("2024-05-01"), core.MustParseDate("2024-05-31"))
			require.NoError(t, err)
			assert.Len(t, rows, 2)
			assert.Nil(t, rows[0].RecurringTemplateID)
			assert.False(t, rows[0].IsRecurring)
		})
	}
}

func TestDeleteUnpaidKeepsPaid(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Transactions().InsertOccurrences(ctx, []core.Transaction{
				occurrence("a", "tpl-1", "2024-01-31", core.StatusPaid),
				occurrence("b", "tpl-1", "2024-02-29", core.StatusToPay),
				occurrence("c", "tpl-1", "2024-03-29", core.StatusSkipped),
				occurrence("d", "tpl-1", "2024-04-29", core.StatusPostponed),
			})
			require.NoError(t, err)

			from := core.MustParseDate("2024-03-01")
			n, err := s.Transactions().DeleteUnpaidByTemplate(ctx, "tpl-1", &from)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			n, err = s.Transactions().DeleteUnpaidByTemplate(ctx, "tpl-1", nil)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			rows, err := s.Transactions().ListByTemplate(ctx, "tpl-1")
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, core.StatusPaid, rows[0].Status)

			// freed keys can be reused
			n, err = s.Transactions().InsertOccurrences(ctx, []core.Transaction{
				occurrence("e", "tpl-1", "2024-02-29", core.StatusToPay),
			})
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestTransactionUpdateKeepsOccurrenceDate(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Transactions().InsertOccurrences(ctx, []core.Transaction{
				occurrence("a", "tpl-1", "2024-01-31", core.StatusToPay),
			})
			require.NoError(t, err)

			row, err := s.Transactions().Get(ctx, "a")
			require.NoError(t, err)
			row.DueDate = core.MustParseDate("2024-02-05")
			row.Amount = decimal.RequireFromString("99.99")
			row.IsException = true
			require.NoError(t, s.Transactions().Update(ctx, *row))

			got, err := s.Transactions().Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, core.MustParseDate("2024-02-05"), got.DueDate)
			require.NotNil(t, got.OccurrenceDate)
			assert.Equal(t, core.MustParseDate("2024-01-31"), *got.OccurrenceDate)
			assert.True(t, got.IsException)
			assert.Equal(t, "99.99", got.Amount.StringFixed(2))
		})
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			boom := ierr.NewError("boom").Mark(ierr.ErrInvalidOperation)

			err := s.InTx(ctx, func(tx storage.Store) error {
				if err := tx.Templates().Create(ctx, sampleTemplate("tpl-1")); err != nil {
					return err
				}
				if _, err := tx.Transactions().InsertOccurrences(ctx, []core.Transaction{
					occurrence("a", "tpl-1", "2024-01-31", core.StatusToPay),
				}); err != nil {
					return err
				}
				return boom
			})
			require.ErrorIs(t, err, boom)

			_, err = s.Templates().Get(ctx, "tpl-1")
			assert.True(t, ierr.IsNotFound(err))
			dates, err := s.Transactions().OccurrenceDates(ctx, "tpl-1")
			require.NoError(t, err)
			assert.Empty(t, dates)

			require.NoError(t, s.InTx(ctx, func(tx storage.Store) error {
				return tx.Templates().Create(ctx, sampleTemplate("tpl-1"))
			}))
			_, err = s.Templates().Get(ctx, "tpl-1")
			assert.NoError(t, err)
		})
	}
}
