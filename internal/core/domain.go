package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	ierr "liquidity/internal/errors"
)

const (
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const (
	Payment TransactionType = "payment"
	Earning TransactionType = "earning"
)

const (
	TemplateActive TemplateStatus = "active"
	TemplatePaused TemplateStatus = "paused"
)

const (
	StatusToPay     TransactionStatus = "to_pay"
	StatusPostponed TransactionStatus = "postponed"
	StatusPaid      TransactionStatus = "paid"
	StatusSkipped   TransactionStatus = "skipped"
)

// DefaultCurrency is applied when a template is created without a currency code.
const DefaultCurrency = "EUR"

type (
	Frequency         string
	TransactionType   string
	TemplateStatus    string
	TransactionStatus string

	// Template is a recurring generation rule. EndDate and OccurrencesCount are
	// alternative end conditions; when both are set EndDate wins.
	Template struct {
		ID                string          `json:"id"`
		Type              TransactionType `json:"type"`
		Amount            decimal.Decimal `json:"amount"`
		Currency          string          `json:"currency"`
		Frequency         Frequency       `json:"frequency"`
		StartDate         Date            `json:"startDate"`
		EndDate           *Date           `json:"endDate,omitempty"`
		OccurrencesCount  *int            `json:"occurrencesCount,omitempty"`
		CompanyID         string          `json:"companyId"`
		Payee             string          `json:"payee"`
		Reference         string          `json:"reference,omitempty"`
		CategoryID        string          `json:"categoryId,omitempty"`
		Status            TemplateStatus  `json:"status"`
		LastGeneratedDate *Date           `json:"lastGeneratedDate,omitempty"`
		CreatedAt         time.Time       `json:"createdAt"`
	}

	// Transaction is a single dated payment or earning. Rows produced from a template
	// carry RecurringTemplateID and an immutable OccurrenceDate.
	Transaction struct {
		ID                  string            `json:"id"`
		Type                TransactionType   `json:"type"`
		Amount              decimal.Decimal   `json:"amount"`
		Currency            string            `json:"currency"`
		DueDate             Date              `json:"dueDate"`
		CompanyID           string            `json:"companyId"`
		Payee               string            `json:"payee"`
		Reference           string            `json:"reference,omitempty"`
		CategoryID          string            `json:"categoryId,omitempty"`
		Status              TransactionStatus `json:"status"`
		RecurringTemplateID *string           `json:"recurringTemplateId,omitempty"`
		IsRecurring         bool              `json:"isRecurring"`
		IsException         bool              `json:"isException"`
		OccurrenceDate      *Date             `json:"occurrenceDate,omitempty"`
		CreatedAt           time.Time         `json:"createdAt"`
	}
)

func (f Frequency) IsValid() bool {
	switch f {
	case Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func (t TransactionType) IsValid() bool {
	return t == Payment || t == Earning
}

func (s TemplateStatus) IsValid() bool {
	return s == TemplateActive || s == TemplatePaused
}

func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusToPay, StatusPostponed, StatusPaid, StatusSkipped:
		return true
	}
	return false
}

// IsTerminal reports whether no further status change is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusSkipped
}

// IsUnpaid reports whether the row still counts towards forecasts.
func (s TransactionStatus) IsUnpaid() bool {
	return s == StatusToPay || s == StatusPostponed
}

// CanTransition reports whether from → to is allowed for a row. Skipping is only
// possible for occurrences generated from a template.
func CanTransition(from, to TransactionStatus, recurring bool) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusToPay, StatusPostponed:
		switch to {
		case StatusToPay, StatusPostponed, StatusPaid:
			return true
		case StatusSkipped:
			return recurring
		}
	}
	return false
}

func validationError(msg string, details map[string]any) error {
	return ierr.NewError(msg).
		WithHint(msg).
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}

// Validate checks the fields every template must carry before it is persisted.
func (t Template) Validate() error {
	if !t.Type.IsValid() {
		return validationError("invalid template type", map[string]any{"type": t.Type})
	}
	if !t.Amount.IsPositive() {
		return validationError("amount must be greater than zero", map[string]any{"amount": t.Amount.String()})
	}
	if strings.TrimSpace(t.Currency) == "" {
		return validationError("currency is required", nil)
	}
	if !t.Frequency.IsValid() {
		return validationError("invalid frequency", map[string]any{"frequency": t.Frequency})
	}
	if err := t.StartDate.Validate(); err != nil {
		return validationError("start date is required", nil)
	}
	if t.EndDate != nil {
		if err := t.EndDate.Validate(); err != nil {
			return validationError("invalid end date", nil)
		}
		if t.EndDate.Before(t.StartDate) {
			return validationError("end date must not be before start date", map[string]any{
				"startDate": t.StartDate.String(),
				"endDate":   t.EndDate.String(),
			})
		}
	}
	if t.OccurrencesCount != nil && *t.OccurrencesCount < 1 {
		return validationError("occurrences count must be positive", map[string]any{"occurrencesCount": *t.OccurrencesCount})
	}
	if strings.TrimSpace(t.Payee) == "" {
		return validationError("payee is required", nil)
	}
	if len(t.Payee) > 200 {
		return validationError("payee too long (max 200 characters)", nil)
	}
	if strings.TrimSpace(t.CompanyID) == "" {
		return validationError("company is required", nil)
	}
	return nil
}

// EffectiveOccurrencesCount returns the count limit the generator honours. It is nil
// when an end date is set, since the end date takes precedence.
func (t Template) EffectiveOccurrencesCount() *int {
	if t.EndDate != nil {
		return nil
	}
	return t.OccurrencesCount
}

// Validate checks a single transaction row after an instance edit.
func (tx Transaction) Validate() error {
	if !tx.Type.IsValid() {
		return validationError("invalid transaction type", map[string]any{"type": tx.Type})
	}
	if !tx.Amount.IsPositive() {
		return validationError("amount must be greater than zero", map[string]any{"amount": tx.Amount.String()})
	}
	if err := tx.DueDate.Validate(); err != nil {
		return validationError("due date is required", nil)
	}
	if strings.TrimSpace(tx.Payee) == "" {
		return validationError("payee is required", nil)
	}
	if strings.TrimSpace(tx.Currency) == "" {
		return validationError("currency is required", nil)
	}
	return nil
}

// TemplateID returns the owning template id, or "" for one-off rows.
func (tx Transaction) TemplateID() string {
	if tx.RecurringTemplateID == nil {
		return ""
	}
	return *tx.RecurringTemplateID
}
