package http

import (
	"context"
	"net/http"

	"liquidity/internal/core"
	ierr "liquidity/internal/errors"
	"liquidity/internal/middleware/trace"
	"liquidity/internal/services"
)

// Engine is the part of the reconciliation engine the API drives.
type Engine interface {
	CreateTemplate(ctx context.Context, in services.CreateTemplateInput) (*services.Outcome, error)
	UpdateSeries(ctx context.Context, id string, changes services.TemplateChanges, regenerateFuture bool) (*services.Outcome, error)
	UpdateInstance(ctx context.Context, transactionID string, changes services.TransactionChanges) (*core.Transaction, error)
	Pause(ctx context.Context, id string) (*services.Outcome, error)
	Resume(ctx context.Context, id string) (*services.Outcome, error)
	DeleteTemplate(ctx context.Context, id string) (*services.Outcome, error)
	SkipOccurrence(ctx context.Context, transactionID string) (*core.Transaction, error)
	SetStatus(ctx context.Context, transactionID string, status core.TransactionStatus) (*core.Transaction, error)
	TopUp(ctx context.Context) (*services.TopUpSummary, error)
	GetTemplate(ctx context.Context, id string) (*services.TemplateSummary, error)
	ListTemplates(ctx context.Context) ([]services.TemplateSummary, error)
	ListOccurrences(ctx context.Context, templateID string) ([]core.Transaction, error)
	Forecast(ctx context.Context, from, to core.Date) ([]services.ForecastBucket, error)
}

var _ Engine = (*services.Engine)(nil)

// outcomeResponse is an engine outcome plus the truncation warning, if any.
type outcomeResponse struct {
	*services.Outcome
	Warning string `json:"warning,omitempty"`
}

// warningFor returns the client message of a generation-limit error.
func warningFor(err error) string {
	if hint := ierr.Hint(err); hint != "" {
		return hint
	}
	return err.Error()
}

// writeOutcome answers a template mutation. A generation limit still carries a
// committed outcome, so it is reported as a warning on a successful response.
func writeOutcome(w http.ResponseWriter, r *http.Request, status int, out *services.Outcome, err error) {
	if err != nil && !(ierr.IsGenerationLimit(err) && out != nil) {
		writeError(w, r, err)
		return
	}

	resp := outcomeResponse{Outcome: out}
	if err != nil {
		resp.Warning = warningFor(err)
	}
	NewJSONResponse().Status(status).Body(resp).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			NewJSONResponse().
				Status(http.StatusServiceUnavailable).
				Body(ErrorBody{Error: ErrorDetail{Code: "not_ready", Message: "dependencies unavailable"}}).
				Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

type metricsResponse struct {
	trace.Metrics
	RateLimited   int64 `json:"rateLimited"`
	ActiveClients int   `json:"activeClients"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(metricsResponse{
		Metrics:       s.Metrics(),
		RateLimited:   s.limiter.Rejected(),
		ActiveClients: s.limiter.ActiveClients(),
	}).Write(w)
}
