package http

import (
	"net/http"

	"liquidity/internal/core"
	"liquidity/internal/services"
)

type createTemplateRequest struct {
	Type             core.TransactionType `json:"type"`
	Amount           Amount               `json:"amount"`
	Currency         string               `json:"currency"`
	Frequency        core.Frequency       `json:"frequency"`
	StartDate        core.Date            `json:"startDate"`
	EndDate          *core.Date           `json:"endDate"`
	OccurrencesCount *int                 `json:"occurrencesCount"`
	CompanyID        string               `json:"companyId"`
	Payee            string               `json:"payee"`
	Reference        string               `json:"reference"`
	CategoryID       string               `json:"categoryId"`
}

func (req createTemplateRequest) input() services.CreateTemplateInput {
	return services.CreateTemplateInput{
		Type:             req.Type,
		Amount:           req.Amount.Decimal,
		Currency:         req.Currency,
		Frequency:        req.Frequency,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		OccurrencesCount: req.OccurrencesCount,
		CompanyID:        req.CompanyID,
		Payee:            req.Payee,
		Reference:        req.Reference,
		CategoryID:       req.CategoryID,
	}
}

// updateTemplateRequest holds the series fields to change. Absent fields are
// left untouched; endDate "" clears the end date.
type updateTemplateRequest struct {
	Type             *core.TransactionType `json:"type"`
	Amount           *Amount               `json:"amount"`
	Currency         *string               `json:"currency"`
	Frequency        *core.Frequency       `json:"frequency"`
	StartDate        *core.Date            `json:"startDate"`
	EndDate          *core.Date            `json:"endDate"`
	OccurrencesCount *int                  `json:"occurrencesCount"`
	CompanyID        *string               `json:"companyId"`
	Payee            *string               `json:"payee"`
	Reference        *string               `json:"reference"`
	CategoryID       *string               `json:"categoryId"`
	RegenerateFuture bool                  `json:"regenerateFuture"`
}

func (req updateTemplateRequest) changes() services.TemplateChanges {
	return services.TemplateChanges{
		Type:             req.Type,
		Amount:           amountPtr(req.Amount),
		Currency:         req.Currency,
		Frequency:        req.Frequency,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		OccurrencesCount: req.OccurrencesCount,
		CompanyID:        req.CompanyID,
		Payee:            req.Payee,
		Reference:        req.Reference,
		CategoryID:       req.CategoryID,
	}
}

// GET /api/templates
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.engine.ListTemplates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if templates == nil {
		templates = []services.TemplateSummary{}
	}
	NewJSONResponse().Body(map[string]any{"templates": templates}).Write(w)
}

// POST /api/templates
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := s.engine.CreateTemplate(r.Context(), req.input())
	writeOutcome(w, r, http.StatusCreated, out, err)
}

// GET /api/templates/{id}
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.engine.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

// PATCH /api/templates/{id}
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := s.engine.UpdateSeries(r.Context(), id, req.changes(), req.RegenerateFuture)
	writeOutcome(w, r, http.StatusOK, out, err)
}

// DELETE /api/templates/{id}
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := s.engine.DeleteTemplate(r.Context(), id)
	writeOutcome(w, r, http.StatusOK, out, err)
}

// POST /api/templates/{id}/pause
func (s *Server) handlePauseTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := s.engine.Pause(r.Context(), id)
	writeOutcome(w, r, http.StatusOK, out, err)
}

// POST /api/templates/{id}/resume
func (s *Server) handleResumeTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := s.engine.Resume(r.Context(), id)
	writeOutcome(w, r, http.StatusOK, out, err)
}

// GET /api/templates/{id}/occurrences
func (s *Server) handleListOccurrences(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := s.engine.ListOccurrences(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []core.Transaction{}
	}
	NewJSONResponse().Body(map[string]any{"occurrences": rows}).Write(w)
}
