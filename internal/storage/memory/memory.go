// Package memory is an in-process Store used by tests and DATA_BACKEND=memory.
// It mirrors the SQLite constraints, including the unique occurrence key.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"

	"liquidity/internal/core"
	ierr "liquidity/internal/errors"
	"liquidity/internal/storage"
)

type occurrenceKey struct {
	templateID string
	date       core.Date
}

type state struct {
	templates    map[string]core.Template
	transactions map[string]core.Transaction
	occurrences  map[occurrenceKey]string
}

func newState() *state {
	return &state{
		templates:    map[string]core.Template{},
		transactions: map[string]core.Transaction{},
		occurrences:  map[occurrenceKey]string{},
	}
}

func (s *state) clone() *state {
	out := &state{
		templates:    make(map[string]core.Template, len(s.templates)),
		transactions: make(map[string]core.Transaction, len(s.transactions)),
		occurrences:  make(map[occurrenceKey]string, len(s.occurrences)),
	}
	for k, v := range s.templates {
		out.templates[k] = v
	}
	for k, v := range s.transactions {
		out.transactions[k] = v
	}
	for k, v := range s.occurrences {
		out.occurrences[k] = v
	}
	return out
}

// Store keeps every row in maps guarded by a single mutex. A transaction works on a
// copy of the maps and swaps it in on success, so a failed fn leaves nothing behind.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

func New() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState()}
}

func (s *Store) Close() error { return nil }

func (s *Store) Templates() storage.TemplateRepository {
	return &templates{s: s}
}

func (s *Store) Transactions() storage.TransactionRepository {
	return &transactions{s: s}
}

func (s *Store) InTx(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := &Store{mu: s.mu, st: s.st.clone(), inTx: true}
	if err := fn(work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work.st
	return nil
}

// with runs fn against the current state, taking the lock unless a transaction
// already holds it.
func (s *Store) with(fn func(st *state) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

func notFound(kind, id string) error {
	return ierr.NewErrorf("%s %s not found", kind, id).
		WithHintf("%s not found", kind).
		Mark(ierr.ErrNotFound)
}

func copyTemplate(t core.Template) core.Template {
	if t.EndDate != nil {
		d := *t.EndDate
		t.EndDate = &d
	}
	if t.OccurrencesCount != nil {
		n := *t.OccurrencesCount
		t.OccurrencesCount = &n
	}
	if t.LastGeneratedDate != nil {
		d := *t.LastGeneratedDate
		t.LastGeneratedDate = &d
	}
	return t
}

func copyTransaction(tx core.Transaction) core.Transaction {
	if tx.RecurringTemplateID != nil {
		id := *tx.RecurringTemplateID
		tx.RecurringTemplateID = &id
	}
	if tx.OccurrenceDate != nil {
		d := *tx.OccurrenceDate
		tx.OccurrenceDate = &d
	}
	return tx
}

type templates struct {
	s *Store
}

func (r *templates) Create(_ context.Context, t core.Template) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.templates[t.ID]; ok {
			return ierr.NewErrorf("template %s already exists", t.ID).Mark(ierr.ErrDatabase)
		}
		st.templates[t.ID] = copyTemplate(t)
		return nil
	})
}

func (r *templates) Update(_ context.Context, t core.Template) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.templates[t.ID]; !ok {
			return notFound("template", t.ID)
		}
		st.templates[t.ID] = copyTemplate(t)
		return nil
	})
}

func (r *templates) UpdateStatus(_ context.Context, id string, status core.TemplateStatus) error {
	return r.s.with(func(st *state) error {
		t, ok := st.templates[id]
		if !ok {
			return notFound("template", id)
		}
		t.Status = status
		st.templates[id] = t
		return nil
	})
}

func (r *templates) UpdateLastGenerated(_ context.Context, id string, date *core.Date) error {
	return r.s.with(func(st *state) error {
		t, ok := st.templates[id]
		if !ok {
			return notFound("template", id)
		}
		t.LastGeneratedDate = nil
		if date != nil {
			d := *date
			t.LastGeneratedDate = &d
		}
		st.templates[id] = t
		return nil
	})
}

func (r *templates) Delete(_ context.Context, id string) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.templates[id]; !ok {
			return notFound("template", id)
		}
		delete(st.templates, id)
		return nil
	})
}

func (r *templates) Get(_ context.Context, id string) (*core.Template, error) {
	var out *core.Template
	err := r.s.with(func(st *state) error {
		t, ok := st.templates[id]
		if !ok {
			return notFound("template", id)
		}
		t = copyTemplate(t)
		out = &t
		return nil
	})
	return out, err
}

func (r *templates) List(_ context.Context) ([]core.Template, error) {
	var out []core.Template
	err := r.s.with(func(st *state) error {
		out = lo.Map(lo.Values(st.templates), func(t core.Template, _ int) core.Template {
			return copyTemplate(t)
		})
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r *templates) ListByStatus(_ context.Context, status core.TemplateStatus) ([]core.Template, error) {
	var out []core.Template
	err := r.s.with(func(st *state) error {
		for _, t := range st.templates {
			if t.Status == status {
				out = append(out, copyTemplate(t))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type transactions struct {
	s *Store
}

func (r *transactions) Get(_ context.Context, id string) (*core.Transaction, error) {
	var out *core.Transaction
	err := r.s.with(func(st *state) error {
		tx, ok := st.transactions[id]
		if !ok {
			return notFound("transaction", id)
		}
		tx = copyTransaction(tx)
		out = &tx
		return nil
	})
	return out, err
}

// Update keeps the stored template link and occurrence date.
func (r *transactions) Update(_ context.Context, tx core.Transaction) error {
	return r.s.with(func(st *state) error {
		cur, ok := st.transactions[tx.ID]
		if !ok {
			return notFound("transaction", tx.ID)
		}
		next := copyTransaction(tx)
		next.RecurringTemplateID = cur.RecurringTemplateID
		next.OccurrenceDate = cur.OccurrenceDate
		next.IsRecurring = cur.IsRecurring
		next.CreatedAt = cur.CreatedAt
		st.transactions[tx.ID] = next
		return nil
	})
}

func (r *transactions) ListByTemplate(_ context.Context, templateID string) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.s.with(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.TemplateID() == templateID {
				out = append(out, copyTransaction(tx))
			}
		}
		return nil
	})
	sortByDueDate(out)
	return out, err
}

func (r *transactions) ListDueBetween(_ context.Context, from, to core.Date) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.s.with(func(st *state) error {
		for _, tx := range st.transactions {
			if !tx.DueDate.Before(from) && !tx.DueDate.After(to) {
				out = append(out, copyTransaction(tx))
			}
		}
		return nil
	})
	sortByDueDate(out)
	return out, err
}

func (r *transactions) OccurrenceDates(_ context.Context, templateID string) (map[core.Date]struct{}, error) {
	dates := map[core.Date]struct{}{}
	err := r.s.with(func(st *state) error {
		for key := range st.occurrences {
			if key.templateID == templateID {
				dates[key.date] = struct{}{}
			}
		}
		return nil
	})
	return dates, err
}

// InsertOccurrences silently drops rows whose (template, occurrence date) pair is
// already taken.
func (r *transactions) InsertOccurrences(_ context.Context, rows []core.Transaction) (int, error) {
	inserted := 0
	err := r.s.with(func(st *state) error {
		for _, tx := range rows {
			if _, ok := st.transactions[tx.ID]; ok {
				continue
			}
			if tx.RecurringTemplateID != nil && tx.OccurrenceDate != nil {
				key := occurrenceKey{templateID: *tx.RecurringTemplateID, date: *tx.OccurrenceDate}
				if _, ok := st.occurrences[key]; ok {
					continue
				}
				st.occurrences[key] = tx.ID
			}
			st.transactions[tx.ID] = copyTransaction(tx)
			inserted++
		}
		return nil
	})
	return inserted, err
}

func (r *transactions) DeleteUnpaidByTemplate(_ context.Context, templateID string, from *core.Date) (int, error) {
	deleted := 0
	err := r.s.with(func(st *state) error {
		for id, tx := range st.transactions {
			if tx.TemplateID() != templateID || tx.Status == core.StatusPaid {
				continue
			}
			if from != nil && tx.DueDate.Before(*from) {
				continue
			}
			if tx.OccurrenceDate != nil {
				delete(st.occurrences, occurrenceKey{templateID: templateID, date: *tx.OccurrenceDate})
			}
			delete(st.transactions, id)
			deleted++
		}
		return nil
	})
	return deleted, err
}

func sortByDueDate(txs []core.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].DueDate.Equal(txs[j].DueDate) {
			return txs[i].DueDate.Before(txs[j].DueDate)
		}
		return txs[i].ID < txs[j].ID
	})
}

var _ storage.Store = (*Store)(nil)
