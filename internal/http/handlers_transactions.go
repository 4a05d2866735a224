package http

import (
	"net/http"

	"liquidity/internal/core"
	ierr "liquidity/internal/errors"
	"liquidity/internal/services"
)

type updateTransactionRequest struct {
	Type       *core.TransactionType `json:"type"`
	Amount     *Amount               `json:"amount"`
	Currency   *string               `json:"currency"`
	DueDate    *core.Date            `json:"dueDate"`
	CompanyID  *string               `json:"companyId"`
	Payee      *string               `json:"payee"`
	Reference  *string               `json:"reference"`
	CategoryID *string               `json:"categoryId"`
}

func (req updateTransactionRequest) changes() services.TransactionChanges {
	return services.TransactionChanges{
		Type:       req.Type,
		Amount:     amountPtr(req.Amount),
		Currency:   req.Currency,
		DueDate:    req.DueDate,
		CompanyID:  req.CompanyID,
		Payee:      req.Payee,
		Reference:  req.Reference,
		CategoryID: req.CategoryID,
	}
}

type statusRequest struct {
	Status core.TransactionStatus `json:"status"`
}

// PATCH /api/transactions/{id}
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.engine.UpdateInstance(r.Context(), id, req.changes())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

// POST /api/transactions/{id}/skip
func (s *Server) handleSkipTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.engine.SkipOccurrence(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

// POST /api/transactions/{id}/status
func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Status == "" {
		writeError(w, r, ierr.NewError("missing status").WithHint("status is required").Mark(ierr.ErrValidation))
		return
	}

	tx, err := s.engine.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}
