package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"liquidity/internal/core"
	ierr "liquidity/internal/errors"
	"liquidity/internal/log"

	_ "modernc.org/sqlite"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLiteStore struct {
	db *sql.DB
	q  querier
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the main pool opens the file.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer; transactions own the only connection while they run
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteStore{db: db, q: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Templates() TemplateRepository {
	return &sqliteTemplates{q: s.q}
}

func (s *SQLiteStore) Transactions() TransactionRepository {
	return &sqliteTransactions{q: s.q}
}

// InTx runs fn inside a database transaction. Nested calls reuse the outer one.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError(err, "begin transaction")
	}

	if err := fn(&SQLiteStore{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to roll back transaction",
				log.FieldComponent, log.ComponentStorage,
				log.FieldError, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return dbError(err, "commit transaction")
	}
	return nil
}

func dbError(err error, op string) error {
	return ierr.WithError(fmt.Errorf("%s: %w", op, err)).
		WithHint("storage failure").
		Mark(ierr.ErrDatabase)
}

func notFound(kind, id string) error {
	return ierr.NewErrorf("%s %s not found", kind, id).
		WithHintf("%s not found", kind).
		WithReportableDetails(map[string]any{"id": id}).
		Mark(ierr.ErrNotFound)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDate(d *core.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func datePtr(d core.Date) *core.Date {
	if d.IsZero() {
		return nil
	}
	return &d
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampLayout keeps fixed-width fractions so created_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestamp scans DATETIME columns whether the driver hands back text or time.Time.
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case time.Time:
		t.Time = v
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	return nil
}

func (t *timestamp) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

// templates

type sqliteTemplates struct {
	q querier
}

const templateColumns = `id, type, amount, currency, frequency, start_date, end_date, occurrences_count,
	company_id, payee, reference, category_id, status, last_generated_date, created_at`

func (r *sqliteTemplates) Create(ctx context.Context, t core.Template) error {
	var count any
	if t.OccurrencesCount != nil {
		count = *t.OccurrencesCount
	}
	_, err := r.q.ExecContext(ctx, `INSERT INTO recurring_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Type), t.Amount.String(), t.Currency, string(t.Frequency),
		t.StartDate.String(), nullDate(t.EndDate), count,
		t.CompanyID, t.Payee, nullString(t.Reference), nullString(t.CategoryID),
		string(t.Status), nullDate(t.LastGeneratedDate), t.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return dbError(err, "insert template")
	}
	return nil
}

func (r *sqliteTemplates) Update(ctx context.Context, t core.Template) error {
	var count any
	if t.OccurrencesCount != nil {
		count = *t.OccurrencesCount
	}
	res, err := r.q.ExecContext(ctx, `UPDATE recurring_templates
		SET type = ?, amount = ?, currency = ?, frequency = ?, start_date = ?, end_date = ?,
		    occurrences_count = ?, company_id = ?, payee = ?, reference = ?, category_id = ?,
		    status = ?, last_generated_date = ?
		WHERE id = ?`,
		string(t.Type), t.Amount.String(), t.Currency, string(t.Frequency),
		t.StartDate.String(), nullDate(t.EndDate), count,
		t.CompanyID, t.Payee, nullString(t.Reference), nullString(t.CategoryID),
		string(t.Status), nullDate(t.LastGeneratedDate), t.ID,
	)
	if err != nil {
		return dbError(err, "update template")
	}
	return expectOne(res, "template", t.ID)
}

func (r *sqliteTemplates) UpdateStatus(ctx context.Context, id string, status core.TemplateStatus) error {
	res, err := r.q.ExecContext(ctx, `UPDATE recurring_templates SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return dbError(err, "update template status")
	}
	return expectOne(res, "template", id)
}

func (r *sqliteTemplates) UpdateLastGenerated(ctx context.Context, id string, date *core.Date) error {
	res, err := r.q.ExecContext(ctx, `UPDATE recurring_templates SET last_generated_date = ? WHERE id = ?`, nullDate(date), id)
	if err != nil {
		return dbError(err, "update last generated date")
	}
	return expectOne(res, "template", id)
}

func (r *sqliteTemplates) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM recurring_templates WHERE id = ?`, id)
	if err != nil {
		return dbError(err, "delete template")
	}
	return expectOne(res, "template", id)
}

func (r *sqliteTemplates) Get(ctx context.Context, id string) (*core.Template, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM recurring_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("template", id)
	}
	if err != nil {
		return nil, dbError(err, "get template")
	}
	return t, nil
}

func (r *sqliteTemplates) List(ctx context.Context) ([]core.Template, error) {
	return r.query(ctx, `SELECT `+templateColumns+` FROM recurring_templates ORDER BY created_at DESC, id DESC`)
}

func (r *sqliteTemplates) ListByStatus(ctx context.Context, status core.TemplateStatus) ([]core.Template, error) {
	return r.query(ctx, `SELECT `+templateColumns+` FROM recurring_templates WHERE status = ? ORDER BY id`, string(status))
}

func (r *sqliteTemplates) query(ctx context.Context, query string, args ...any) ([]core.Template, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "list templates")
	}
	defer rows.Close()

	var out []core.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, dbError(err, "scan template")
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "iterate templates")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*core.Template, error) {
	var (
		t                     core.Template
		typ, freq, status     string
		amount                decimal.Decimal
		endDate, lastGen      core.Date
		count                 sql.NullInt64
		reference, categoryID sql.NullString
		createdAt             timestamp
	)
	err := row.Scan(&t.ID, &typ, &amount, &t.Currency, &freq, &t.StartDate, &endDate, &count,
		&t.CompanyID, &t.Payee, &reference, &categoryID, &status, &lastGen, &createdAt)
	if err != nil {
		return nil, err
	}
	t.Type = core.TransactionType(typ)
	t.Frequency = core.Frequency(freq)
	t.Status = core.TemplateStatus(status)
	t.Amount = amount
	t.EndDate = datePtr(endDate)
	t.LastGeneratedDate = datePtr(lastGen)
	if count.Valid {
		n := int(count.Int64)
		t.OccurrencesCount = &n
	}
	t.Reference = reference.String
	t.CategoryID = categoryID.String
	t.CreatedAt = createdAt.Time
	return &t, nil
}

func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dbError(err, "rows affected")
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

// transactions

type sqliteTransactions struct {
	q querier
}

const transactionColumns = `id, type, amount, currency, due_date, company_id, payee, reference, category_id,
	status, recurring_template_id, is_recurring, is_exception, occurrence_date, created_at`

func (r *sqliteTransactions) Get(ctx context.Context, id string) (*core.Transaction, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("transaction", id)
	}
	if err != nil {
		return nil, dbError(err, "get transaction")
	}
	return tx, nil
}

// Update writes the mutable columns. occurrence_date and recurring_template_id are
// never rewritten.
func (r *sqliteTransactions) Update(ctx context.Context, tx core.Transaction) error {
	res, err := r.q.ExecContext(ctx, `UPDATE transactions
		SET type = ?, amount = ?, currency = ?, due_date = ?, company_id = ?, payee = ?,
		    reference = ?, category_id = ?, status = ?, is_exception = ?
		WHERE id = ?`,
		string(tx.Type), tx.Amount.String(), tx.Currency, tx.DueDate.String(), nullString(tx.CompanyID),
		tx.Payee, nullString(tx.Reference), nullString(tx.CategoryID), string(tx.Status),
		boolInt(tx.IsException), tx.ID,
	)
	if err != nil {
		return dbError(err, "update transaction")
	}
	return expectOne(res, "transaction", tx.ID)
}

func (r *sqliteTransactions) ListByTemplate(ctx context.Context, templateID string) ([]core.Transaction, error) {
	return r.query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE recurring_template_id = ? ORDER BY due_date, id`, templateID)
}

func (r *sqliteTransactions) ListDueBetween(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	return r.query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE due_date >= ? AND due_date <= ? ORDER BY due_date, id`, from.String(), to.String())
}

func (r *sqliteTransactions) OccurrenceDates(ctx context.Context, templateID string) (map[core.Date]struct{}, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT occurrence_date FROM transactions
		WHERE recurring_template_id = ? AND occurrence_date IS NOT NULL`, templateID)
	if err != nil {
		return nil, dbError(err, "list occurrence dates")
	}
	defer rows.Close()

	dates := make(map[core.Date]struct{})
	for rows.Next() {
		var d core.Date
		if err := rows.Scan(&d); err != nil {
			return nil, dbError(err, "scan occurrence date")
		}
		dates[d] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "iterate occurrence dates")
	}
	return dates, nil
}

func (r *sqliteTransactions) InsertOccurrences(ctx context.Context, txs []core.Transaction) (int, error) {
	inserted := 0
	for _, tx := range txs {
		res, err := r.q.ExecContext(ctx, `INSERT INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`,
			tx.ID, string(tx.Type), tx.Amount.String(), tx.Currency, tx.DueDate.String(),
			nullString(tx.CompanyID), tx.Payee, nullString(tx.Reference), nullString(tx.CategoryID),
			string(tx.Status), nullString(tx.TemplateID()), boolInt(tx.IsRecurring),
			boolInt(tx.IsException), nullDate(tx.OccurrenceDate), tx.CreatedAt.UTC().Format(timestampLayout),
		)
		if err != nil {
			return inserted, dbError(err, "insert occurrence")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, dbError(err, "rows affected")
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (r *sqliteTransactions) DeleteUnpaidByTemplate(ctx context.Context, templateID string, from *core.Date) (int, error) {
	query := `DELETE FROM transactions WHERE recurring_template_id = ? AND status != 'paid'`
	args := []any{templateID}
	if from != nil {
		query += ` AND due_date >= ?`
		args = append(args, from.String())
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, dbError(err, "delete unpaid occurrences")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dbError(err, "rows affected")
	}
	return int(n), nil
}

func (r *sqliteTransactions) query(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "list transactions")
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, dbError(err, "scan transaction")
		}
		out = append(out, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "iterate transactions")
	}
	return out, nil
}

func scanTransaction(row rowScanner) (*core.Transaction, error) {
	var (
		tx                               core.Transaction
		typ, status                      string
		amount                           decimal.Decimal
		companyID, reference, categoryID sql.NullString
		templateID                       sql.NullString
		isRecurring, isException         int
		occurrenceDate                   core.Date
		createdAt                        timestamp
	)
	err := row.Scan(&tx.ID, &typ, &amount, &tx.Currency, &tx.DueDate, &companyID, &tx.Payee,
		&reference, &categoryID, &status, &templateID, &isRecurring, &isException,
		&occurrenceDate, &createdAt)
	if err != nil {
		return nil, err
	}
	tx.Type = core.TransactionType(typ)
	tx.Status = core.TransactionStatus(status)
	tx.Amount = amount
	tx.CompanyID = companyID.String
	tx.Reference = reference.String
	tx.CategoryID = categoryID.String
	if templateID.Valid {
		id := templateID.String
		tx.RecurringTemplateID = &id
	}
	tx.IsRecurring = isRecurring != 0
	tx.IsException = isException != 0
	tx.OccurrenceDate = datePtr(occurrenceDate)
	tx.CreatedAt = createdAt.Time
	return &tx, nil
}

var _ Store = (*SQLiteStore)(nil)

