package http

import (
	"net/http"

	"liquidity/internal/core"
	ierr "liquidity/internal/errors"
	"liquidity/internal/services"
)

type topUpResponse struct {
	*services.TopUpSummary
	Warning string `json:"warning,omitempty"`
}

type forecastResponse struct {
	From    core.Date                 `json:"from"`
	To      core.Date                 `json:"to"`
	Buckets []services.ForecastBucket `json:"buckets"`
}

// POST /api/recurring/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.TopUp(r.Context())
	if err != nil && !(ierr.IsGenerationLimit(err) && summary != nil) {
		writeError(w, r, err)
		return
	}

	resp := topUpResponse{TopUpSummary: summary}
	if err != nil {
		resp.Warning = warningFor(err)
	}
	NewJSONResponse().Body(resp).Write(w)
}

// GET /api/forecast?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := from.String() + "|" + to.String()
	buckets, cached := s.forecasts.Get(key)
	if !cached {
		buckets, err = s.engine.Forecast(r.Context(), from, to)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if buckets == nil {
			buckets = []services.ForecastBucket{}
		}
		s.forecasts.Set(key, buckets)
	}
	NewJSONResponse().Body(forecastResponse{From: from, To: to, Buckets: buckets}).Write(w)
}
