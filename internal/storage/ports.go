package storage

import (
	"context"

	"liquidity/internal/core"
)

// Ports implemented by the sqlite and memory stores.
type (
	TemplateRepository interface {
		Create(ctx context.Context, t core.Template) error
		Update(ctx context.Context, t core.Template) error
		UpdateStatus(ctx context.Context, id string, status core.TemplateStatus) error
		UpdateLastGenerated(ctx context.Context, id string, date *core.Date) error
		Delete(ctx context.Context, id string) error
		Get(ctx context.Context, id string) (*core.Template, error)
		List(ctx context.Context) ([]core.Template, error)
		ListByStatus(ctx context.Context, status core.TemplateStatus) ([]core.Template, error)
	}

	TransactionRepository interface {
		Get(ctx context.Context, id string) (*core.Transaction, error)
		Update(ctx context.Context, tx core.Transaction) error
		ListByTemplate(ctx context.Context, templateID string) ([]core.Transaction, error)
		// ListDueBetween returns rows whose due date falls in [from, to].
		ListDueBetween(ctx context.Context, from, to core.Date) ([]core.Transaction, error)
		// OccurrenceDates returns the occurrence dates already persisted for a template.
		OccurrenceDates(ctx context.Context, templateID string) (map[core.Date]struct{}, error)
		// InsertOccurrences inserts rows, silently ignoring any whose
		// (recurring_template_id, occurrence_date) already exists. It returns the
		// number of rows actually inserted.
		InsertOccurrences(ctx context.Context, rows []core.Transaction) (int, error)
		// DeleteUnpaidByTemplate removes a template's rows that are not paid; with from set,
		// only rows due on or after from.
		DeleteUnpaidByTemplate(ctx context.Context, templateID string, from *core.Date) (int, error)
	}

	// Store groups the repositories with a unit of work. Inside InTx the callback
	// must only use the Store it is handed; an error rolls back every write.
	Store interface {
		Templates() TemplateRepository
		Transactions() TransactionRepository
		InTx(ctx context.Context, fn func(tx Store) error) error
		Close() error
	}
)
