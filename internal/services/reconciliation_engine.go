package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"liquidity/internal/amqp"
	"liquidity/internal/core"
	ierr "liquidity/internal/errors"
	"liquidity/internal/log"
	"liquidity/internal/storage"
)

const (
	DefaultHorizonMonths = 12
	DefaultConcurrency   = 4
)

// EventPublisher receives a notification after every committed mutation.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event amqp.OccurrenceEvent) error
}

// Engine owns every mutation of templates and their occurrences. Each
// read-generate-insert sequence for a template runs under that template's lock
// and inside one store transaction.
type Engine struct {
	store         storage.Store
	clock         core.Clock
	ids           core.IDGenerator
	publisher     EventPublisher
	logger        *slog.Logger
	horizonMonths int
	concurrency   int
	locks         *templateLocks
}

type Option func(*Engine)

func WithClock(c core.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithIDGenerator(g core.IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithPublisher enables event publishing. A nil publisher disables it.
func WithPublisher(p EventPublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithHorizonMonths(months int) Option {
	return func(e *Engine) {
		if months > 0 {
			e.horizonMonths = months
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConcurrency bounds how many templates TopUp processes at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func NewEngine(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		clock:         core.SystemClock{},
		ids:           core.ULIDGenerator{},
		logger:        slog.Default(),
		horizonMonths: DefaultHorizonMonths,
		concurrency:   DefaultConcurrency,
		locks:         newTemplateLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome is returned by every template mutation.
type Outcome struct {
	Template  *core.Template `json:"template"`
	Generated int            `json:"generated"`
	Deleted   int            `json:"deleted"`
	Truncated bool           `json:"truncated"`
}

// TopUpSummary aggregates one TopUp run across templates.
type TopUpSummary struct {
	Templates int               `json:"templates"`
	Generated int               `json:"generated"`
	Truncated []string          `json:"truncated"`
	Failed    map[string]string `json:"failed"`
}

type CreateTemplateInput struct {
	Type             core.TransactionType `json:"type"`
	Amount           decimal.Decimal      `json:"amount"`
	Currency         string               `json:"currency"`
	Frequency        core.Frequency       `json:"frequency"`
	StartDate        core.Date            `json:"startDate"`
	EndDate          *core.Date           `json:"endDate,omitempty"`
	OccurrencesCount *int                 `json:"occurrencesCount,omitempty"`
	CompanyID        string               `json:"companyId"`
	Payee            string               `json:"payee"`
	Reference        string               `json:"reference,omitempty"`
	CategoryID       string               `json:"categoryId,omitempty"`
}

// TemplateChanges is a partial template update. Nil fields are left alone. A
// non-nil zero EndDate or a zero OccurrencesCount clears that end condition.
type TemplateChanges struct {
	Type             *core.TransactionType `json:"type,omitempty"`
	Amount           *decimal.Decimal      `json:"amount,omitempty"`
	Currency         *string               `json:"currency,omitempty"`
	Frequency        *core.Frequency       `json:"frequency,omitempty"`
	StartDate        *core.Date            `json:"startDate,omitempty"`
	EndDate          *core.Date            `json:"endDate,omitempty"`
	OccurrencesCount *int                  `json:"occurrencesCount,omitempty"`
	CompanyID        *string               `json:"companyId,omitempty"`
	Payee            *string               `json:"payee,omitempty"`
	Reference        *string               `json:"reference,omitempty"`
	CategoryID       *string               `json:"categoryId,omitempty"`
}

// TransactionChanges is a partial edit of a single row.
type TransactionChanges struct {
	Type       *core.TransactionType `json:"type,omitempty"`
	Amount     *decimal.Decimal      `json:"amount,omitempty"`
	Currency   *string               `json:"currency,omitempty"`
	DueDate    *core.Date            `json:"dueDate,omitempty"`
	CompanyID  *string               `json:"companyId,omitempty"`
	Payee      *string               `json:"payee,omitempty"`
	Reference  *string               `json:"reference,omitempty"`
	CategoryID *string               `json:"categoryId,omitempty"`
}

func (e *Engine) today() core.Date {
	return core.Today(e.clock)
}

// Horizon is the last date generation may reach from today.
func (e *Engine) Horizon() core.Date {
	return e.today().AddMonthsClamped(e.horizonMonths)
}

// CreateTemplate validates the input, stores an active template and generates its
// occurrences up to the horizon.
func (e *Engine) CreateTemplate(ctx context.Context, in CreateTemplateInput) (*Outcome, error) {
	t := core.Template{
		ID:               e.ids.NewID(),
		Type:             in.Type,
		Amount:           in.Amount,
		Currency:         strings.ToUpper(strings.TrimSpace(in.Currency)),
		Frequency:        in.Frequency,
		StartDate:        in.StartDate,
		EndDate:          normalizeDate(in.EndDate),
		OccurrencesCount: in.OccurrencesCount,
		CompanyID:        strings.TrimSpace(in.CompanyID),
		Payee:            strings.TrimSpace(in.Payee),
		Reference:        strings.TrimSpace(in.Reference),
		CategoryID:       strings.TrimSpace(in.CategoryID),
		Status:           core.TemplateActive,
		CreatedAt:        e.clock.Now().UTC(),
	}
	if t.Type == "" {
		t.Type = core.Payment
	}
	if t.Currency == "" {
		t.Currency = core.DefaultCurrency
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	e.warnBothEndConditions(ctx, t)

	var out Outcome
	err := e.locked(t.ID, func() error {
		return e.store.InTx(ctx, func(tx storage.Store) error {
			if err := tx.Templates().Create(ctx, t); err != nil {
				return err
			}
			res, inserted, err := e.generate(ctx, tx, &t, nil)
			if err != nil {
				return err
			}
			out = Outcome{Template: &t, Generated: inserted, Truncated: res.Truncated}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Created recurring template",
		log.FieldOperation, log.OpCreate,
		log.FieldTemplateID, t.ID,
		"frequency", t.Frequency,
		log.FieldGenerated, out.Generated)
	e.publish(ctx, amqp.EventTemplateCreated, t.ID, 0)
	e.publish(ctx, amqp.EventOccurrencesGenerated, t.ID, out.Generated)

	return &out, e.truncation(&out)
}

// UpdateSeries applies changes to the template row. With regenerateFuture, every
// non-paid occurrence due today or later is replaced by freshly generated ones;
// earlier rows are left untouched.
func (e *Engine) UpdateSeries(ctx context.Context, id string, changes TemplateChanges, regenerateFuture bool) (*Outcome, error) {
	var out Outcome
	err := e.locked(id, func() error {
		return e.store.InTx(ctx, func(tx storage.Store) error {
			current, err := tx.Templates().Get(ctx, id)
			if err != nil {
				return err
			}
			t := applyTemplateChanges(*current, changes)
			if err := t.Validate(); err != nil {
				return err
			}
			e.warnBothEndConditions(ctx, t)

			if err := tx.Templates().Update(ctx, t); err != nil {
				return err
			}
			out.Template = &t

			if !regenerateFuture {
				return nil
			}

			today := e.today()
			deleted, err := tx.Transactions().DeleteUnpaidByTemplate(ctx, id, &today)
			if err != nil {
				return err
			}
			res, inserted, err := e.generate(ctx, tx, &t, &today)
			if err != nil {
				return err
			}
			out.Deleted = deleted
			out.Generated = inserted
			out.Truncated = res.Truncated
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Updated recurring series",
		log.FieldOperation, log.OpUpdate,
		log.FieldTemplateID, id,
		"regenerate_future", regenerateFuture,
		log.FieldDeleted, out.Deleted,
		log.FieldGenerated, out.Generated)
	e.publish(ctx, amqp.EventTemplateUpdated, id, 0)
	if regenerateFuture {
		e.publish(ctx, amqp.EventOccurrencesDeleted, id, out.Deleted)
		e.publish(ctx, amqp.EventOccurrencesGenerated, id, out.Generated)
	}

	return &out, e.truncation(&out)
}

// UpdateInstance edits one row and flags it as an exception. The occurrence date
// and template link never change.
func (e *Engine) UpdateInstance(ctx context.Context, transactionID string, changes TransactionChanges) (*core.Transaction, error) {
	row, err := e.store.Transactions().Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var updated core.Transaction
	err = e.locked(lockKey(row), func() error {
		return e.store.InTx(ctx, func(tx storage.Store) error {
			cur, err := tx.Transactions().Get(ctx, transactionID)
			if err != nil {
				return err
			}
			updated = applyTransactionChanges(*cur, changes)
			updated.IsException = true
			if err := updated.Validate(); err != nil {
				return err
			}
			return tx.Transactions().Update(ctx, updated)
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Updated occurrence",
		log.FieldOperation, log.OpUpdate,
		log.FieldTransactionID, transactionID,
		log.FieldTemplateID, updated.TemplateID())
	e.publishTransaction(ctx, amqp.EventOccurrenceUpdated, updated)
	return &updated, nil
}

// Pause stops generation for a template. Existing occurrences are kept.
func (e *Engine) Pause(ctx context.Context, id string) (*Outcome, error) {
	var out Outcome
	changed := false
	err := e.locked(id, func() error {
		return e.store.InTx(ctx, func(tx storage.Store) error {
			t, err := tx.Templates().Get(ctx, id)
			if err != nil {
				return err
			}
			out.Template = t
			if t.Status == core.TemplatePaused {
				return nil
			}
			if err := tx.Templates().UpdateStatus(ctx, id, core.TemplatePaused); err != nil {
				return err
			}
			t.Status = core.TemplatePaused
			changed = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if changed {
		e.logger.InfoContext(ctx, "Paused recurring template", log.FieldOperation, log.OpPause, log.FieldTemplateID, id)
		e.publish(ctx, amqp.EventTemplatePaused, id, 0)
	}
	return &out, nil
}

// Resume reactivates a paused template and fills every slot after the watermark up
// to the horizon, including those that fell due while it was paused.
func (e *Engine) Resume(ctx context.Context, id string) (*Outcome, error) {
	var out Outcome
	changed := false
	err := e.locked(id, func() error {
		return e.store.InTx(ctx, func(tx storage.Store) error {
			t, err := tx.Templates().Get(ctx, id)
			if err != nil {
				return err
			}
			out.Template = t
			if t.Status == core.TemplateActive {
				return nil
			}
			if err := tx.Templates().UpdateStatus(ctx, id, core.TemplateActive); err != nil {
				return err
			}
			t.Status = core.TemplateActive
			changed = true

			res, inserted, err := e.generate(ctx, tx, t, nil)
			if err != nil {
				return err
			}
			out.Generated = inserted
			out.Truncated = res.Truncated
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if changed {
		e.logger.InfoContext(ctx, "Resumed recurring template",
			log.FieldOperation, log.OpResume,
			log.FieldTemplateID, id,
			log.FieldGenerated, out.Generated)
		e.publish(ctx, amqp.EventTemplateResumed, id, 0)
		e.publish(ctx, amqp.EventOccurrencesGenerated, id, out.Generated)
	}
	return &out, e.truncation(&out)
}

// DeleteTemplate removes the template and its non-paid occurrences. Paid rows stay
// with a dangling template id.
func (e *Engine) DeleteTemplate(ctx context.Context, id string) (*Outcome, error) {
	var out Outcome
	err := e.locked(id, func() error {
		return e.store.InTx(ctx, func(tx storage.Store) error {
			t, err := tx.Templates().Get(ctx, id)
			if err != nil {
				return err
			}
			deleted, err := tx.Transactions().DeleteUnpaidByTemplate(ctx, id, nil)
			if err != nil {
				return err
			}
			if err := tx.Templates().Delete(ctx, id); err != nil {
				return err
			}
			out = Outcome{Template: t, Deleted: deleted}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Deleted recurring template",
		log.FieldOperation, log.OpDelete,
		log.FieldTemplateID, id,
		log.FieldDeleted, out.Deleted)
	e.publish(ctx, amqp.EventTemplateDeleted, id, out.Deleted)
	return &out, nil
}

// SkipOccurrence marks a generated occurrence as skipped. The slot keeps its
// occurrence date, so it is never generated again.
func (e *Engine) SkipOccurrence(ctx context.Context, transactionID string) (*core.Transaction, error) {
	return e.SetStatus(ctx, transactionID, core.StatusSkipped)
}

// SetStatus moves a row through to_pay ⇄ postponed → paid | skipped.
func (e *Engine) SetStatus(ctx context.Context, transactionID string, status core.TransactionStatus) (*core.Transaction, error) {
	if !status.IsValid() {
		return nil, ierr.NewErrorf("invalid status %q", status).
			WithHint("status must be one of to_pay, postponed, paid, skipped").
			Mark(ierr.ErrValidation)
	}

	row, err := e.store.Transactions().Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var updated core.Transaction
	err = e.locked(lockKey(row), func() error {
		return e.store.InTx(ctx, func(tx storage.Store) error {
			cur, err := tx.Transactions().Get(ctx, transactionID)
			if err != nil {
				return err
			}
			recurring := cur.IsRecurring && cur.RecurringTemplateID != nil
			if status == core.StatusSkipped && !recurring {
				return ierr.NewErrorf("transaction %s is not a recurring occurrence", transactionID).
					WithHint("only recurring occurrences can be skipped").
					Mark(ierr.ErrInvalidOperation)
			}
			if !core.CanTransition(cur.Status, status, recurring) {
				return ierr.NewErrorf("cannot change status from %s to %s", cur.Status, status).
					WithHintf("a %s transaction cannot become %s", cur.Status, status).
					WithReportableDetails(map[string]any{"from": cur.Status, "to": status}).
					Mark(ierr.ErrInvalidOperation)
			}
			updated = *cur
			updated.Status = status
			return tx.Transactions().Update(ctx, updated)
		})
	})
	if err != nil {
		return nil, err
	}

	op := log.OpUpdate
	if status == core.StatusSkipped {
		op = log.OpSkip
	}
	e.logger.InfoContext(ctx, "Changed occurrence status",
		log.FieldOperation, op,
		log.FieldTransactionID, transactionID,
		log.FieldTemplateID, updated.TemplateID(),
		"status", status)
	e.publishTransaction(ctx, amqp.EventOccurrenceStatus, updated)
	return &updated, nil
}

// TopUp extends every active template up to the horizon. Templates are processed
// concurrently and independently; a failing template is reported in the summary
// and does not stop the others. Cancelling ctx stops scheduling new templates.
func (e *Engine) TopUp(ctx context.Context) (*TopUpSummary, error) {
	templates, err := e.store.Templates().ListByStatus(ctx, core.TemplateActive)
	if err != nil {
		return nil, err
	}

	summary := &TopUpSummary{Truncated: []string{}, Failed: map[string]string{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, t := range templates {
		if gctx.Err() != nil {
			break
		}
		id := t.ID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := e.topUpTemplate(gctx, id)

			mu.Lock()
			defer mu.Unlock()
			summary.Templates++
			if out != nil {
				summary.Generated += out.Generated
				if out.Truncated {
					summary.Truncated = append(summary.Truncated, id)
				}
			}
			if err != nil && !ierr.IsGenerationLimit(err) {
				summary.Failed[id] = err.Error()
				fields := log.NewFields().WithOperation(log.OpTopUp).WithTemplate(id).WithError(err)
				e.logger.ErrorContext(gctx, "Failed to top up template", fields.ToSlice()...)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	sort.Strings(summary.Truncated)

	e.logger.InfoContext(ctx, "Recurring top-up complete",
		log.FieldOperation, log.OpTopUp,
		"templates", summary.Templates,
		log.FieldGenerated, summary.Generated,
		log.FieldTruncated, len(summary.Truncated),
		"failed", len(summary.Failed))

	if len(summary.Truncated) > 0 {
		return summary, ierr.NewErrorf("generation limit reached for %d template(s)", len(summary.Truncated)).
			WithHintf("generation stopped after %d iterations for some templates", MaxIterations).
			WithReportableDetails(map[string]any{"templates": summary.Truncated}).
			Mark(ierr.ErrGenerationLimit)
	}
	return summary, nil
}

func (e *Engine) topUpTemplate(ctx context.Context, id string) (*Outcome, error) {
	var out Outcome
	err := e.locked(id, func() error {
		return e.store.InTx(ctx, func(tx storage.Store) error {
			t, err := tx.Templates().Get(ctx, id)
			if err != nil {
				return err
			}
			out.Template = t
			// paused or replaced since the list was read
			if t.Status != core.TemplateActive {
				return nil
			}
			res, inserted, err := e.generate(ctx, tx, t, nil)
			if err != nil {
				return err
			}
			out.Generated = inserted
			out.Truncated = res.Truncated
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if out.Generated > 0 {
		e.logger.InfoContext(ctx, "Topped up recurring template",
			log.FieldOperation, log.OpTopUp,
			log.FieldTemplateID, id,
			log.FieldGenerated, out.Generated)
		e.publish(ctx, amqp.EventOccurrencesGenerated, id, out.Generated)
	}
	return &out, e.truncation(&out)
}

// generate runs one generator pass for t inside tx, inserts the new rows and moves
// the watermark. Without notBefore only slots after the current watermark are
// emitted. With notBefore every day before it counts as covered, so later passes
// never fill that range back in.
func (e *Engine) generate(ctx context.Context, tx storage.Store, t *core.Template, notBefore *core.Date) (GenerateResult, int, error) {
	existing, err := tx.Transactions().OccurrenceDates(ctx, t.ID)
	if err != nil {
		return GenerateResult{}, 0, err
	}

	floor := notBefore
	if floor == nil && t.LastGeneratedDate != nil {
		next := t.LastGeneratedDate.AddDays(1)
		floor = &next
	}

	res := Generate(*t, GenerateOptions{
		Horizon:   e.Horizon(),
		Existing:  existing,
		NotBefore: floor,
	})
	if res.Truncated {
		e.logger.WarnContext(ctx, "Generation limit reached",
			log.FieldTemplateID, t.ID,
			"iterations", res.Iterations,
			log.FieldGenerated, len(res.Drafts))
	}

	inserted := 0
	if len(res.Drafts) > 0 {
		now := e.clock.Now().UTC()
		templateID := t.ID
		rows := lo.Map(res.Drafts, func(d core.Transaction, _ int) core.Transaction {
			d.ID = e.ids.NewID()
			d.RecurringTemplateID = &templateID
			d.CreatedAt = now
			return d
		})
		inserted, err = tx.Transactions().InsertOccurrences(ctx, rows)
		if err != nil {
			return res, 0, err
		}
	}

	watermark := latestDate(existing, res.LastDate())
	if notBefore != nil {
		covered := notBefore.AddDays(-1)
		if watermark == nil || covered.After(*watermark) {
			watermark = &covered
		}
	}
	if !sameDate(watermark, t.LastGeneratedDate) {
		if err := tx.Templates().UpdateLastGenerated(ctx, t.ID, watermark); err != nil {
			return res, inserted, err
		}
		t.LastGeneratedDate = watermark
	}
	return res, inserted, nil
}

func (e *Engine) truncation(out *Outcome) error {
	if out == nil || !out.Truncated {
		return nil
	}
	id := ""
	if out.Template != nil {
		id = out.Template.ID
	}
	return ierr.NewErrorf("generation for template %s stopped after %d iterations", id, MaxIterations).
		WithHint("generation limit reached; some occurrences were not created").
		WithReportableDetails(map[string]any{"templateId": id, "generated": out.Generated}).
		Mark(ierr.ErrGenerationLimit)
}

func (e *Engine) warnBothEndConditions(ctx context.Context, t core.Template) {
	if t.EndDate != nil && t.OccurrencesCount != nil {
		e.logger.WarnContext(ctx, "Template has both end date and occurrences count, end date takes precedence",
			log.FieldTemplateID, t.ID,
			"end_date", t.EndDate.String(),
			"occurrences_count", *t.OccurrencesCount)
	}
}

func (e *Engine) publish(ctx context.Context, event, templateID string, count int) {
	if e.publisher == nil {
		return
	}
	if count == 0 && strings.HasPrefix(event, "occurrences.") {
		return
	}
	msg := amqp.NewOccurrenceEvent(event, templateID, count, e.clock.Now())
	if err := e.publisher.PublishEvent(ctx, *msg); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event", "event", event, log.FieldTemplateID, templateID, log.FieldError, err)
	}
}

func (e *Engine) publishTransaction(ctx context.Context, event string, row core.Transaction) {
	if e.publisher == nil {
		return
	}
	msg := amqp.NewOccurrenceEvent(event, row.TemplateID(), 1, e.clock.Now())
	msg.TransactionID = row.ID
	msg.Status = string(row.Status)
	if err := e.publisher.PublishEvent(ctx, *msg); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event", "event", event, log.FieldTransactionID, row.ID, log.FieldError, err)
	}
}

// locked runs fn while holding the lock for key. Events are published by callers
// after it returns.
func (e *Engine) locked(key string, fn func() error) error {
	unlock := e.locks.Lock(key)
	defer unlock()
	return fn()
}

func lockKey(row *core.Transaction) string {
	if id := row.TemplateID(); id != "" {
		return id
	}
	return "tx:" + row.ID
}

func normalizeDate(d *core.Date) *core.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	out := *d
	return &out
}

func latestDate(existing map[core.Date]struct{}, emitted *core.Date) *core.Date {
	dates := lo.Keys(existing)
	if emitted != nil {
		dates = append(dates, *emitted)
	}
	if len(dates) == 0 {
		return nil
	}
	latest := lo.MaxBy(dates, func(a, b core.Date) bool { return a.After(b) })
	return &latest
}

func sameDate(a, b *core.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func applyTemplateChanges(t core.Template, c TemplateChanges) core.Template {
	if c.Type != nil {
		t.Type = *c.Type
	}
	if c.Amount != nil {
		t.Amount = *c.Amount
	}
	if c.Currency != nil {
		t.Currency = strings.ToUpper(strings.TrimSpace(*c.Currency))
	}
	if c.Frequency != nil {
		t.Frequency = *c.Frequency
	}
	if c.StartDate != nil {
		t.StartDate = *c.StartDate
	}
	if c.EndDate != nil {
		t.EndDate = normalizeDate(c.EndDate)
	}
	if c.OccurrencesCount != nil {
		if *c.OccurrencesCount == 0 {
			t.OccurrencesCount = nil
		} else {
			n := *c.OccurrencesCount
			t.OccurrencesCount = &n
		}
	}
	if c.CompanyID != nil {
		t.CompanyID = strings.TrimSpace(*c.CompanyID)
	}
	if c.Payee != nil {
		t.Payee = strings.TrimSpace(*c.Payee)
	}
	if c.Reference != nil {
		t.Reference = strings.TrimSpace(*c.Reference)
	}
	if c.CategoryID != nil {
		t.CategoryID = strings.TrimSpace(*c.CategoryID)
	}
	return t
}

func applyTransactionChanges(tx core.Transaction, c TransactionChanges) core.Transaction {
	if c.Type != nil {
		tx.Type = *c.Type
	}
	if c.Amount != nil {
		tx.Amount = *c.Amount
	}
	if c.Currency != nil {
		tx.Currency = strings.ToUpper(strings.TrimSpace(*c.Currency))
	}
	if c.DueDate != nil {
		tx.DueDate = *c.DueDate
	}
	if c.CompanyID != nil {
		tx.CompanyID = strings.TrimSpace(*c.CompanyID)
	}
	if c.Payee != nil {
		tx.Payee = strings.TrimSpace(*c.Payee)
	}
	if c.Reference != nil {
		tx.Reference = strings.TrimSpace(*c.Reference)
	}
	if c.CategoryID != nil {
		tx.CategoryID = strings.TrimSpace(*c.CategoryID)
	}
	return tx
}
