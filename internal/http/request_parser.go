// Package http exposes the recurring engine as a JSON API.
//
// This file implements utilities for decoding and validating request data.

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"liquidity/internal/core"
	ierr "liquidity/internal/errors"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// decodeJSON decodes the request body into dst, rejecting unknown fields and
// trailing data. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ierr.NewError("request body too large").
				WithHintf("request body must not exceed %d bytes", maxBodyBytes).
				Mark(ierr.ErrBadRequest)
		}
		return ierr.WithError(err).WithHint("could not read request body").Mark(ierr.ErrBadRequest)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if ierr.IsValidation(err) {
			return err
		}
		return ierr.WithError(err).
			WithHintf("invalid JSON body: %s", strings.TrimPrefix(err.Error(), "json: ")).
			Mark(ierr.ErrBadRequest)
	}
	if dec.More() {
		return ierr.NewError("trailing data after JSON body").
			WithHint("request body must contain a single JSON object").
			Mark(ierr.ErrBadRequest)
	}
	return nil
}

// Amount accepts a JSON number or a string using either a dot or a comma as
// decimal separator.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	parsed, err := core.ParseAmount(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	a.Decimal = parsed
	return nil
}

func amountPtr(a *Amount) *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Decimal
	return &d
}

// pathID returns the {id} route parameter.
func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		return "", ierr.NewError("missing id").WithHint("id is required").Mark(ierr.ErrBadRequest)
	}
	return id, nil
}

// parseDateQuery reads a required YYYY-MM-DD query parameter.
func parseDateQuery(r *http.Request, key string) (core.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return core.Date{}, ierr.NewErrorf("missing %s", key).
			WithHintf("%s is required (YYYY-MM-DD)", key).
			Mark(ierr.ErrValidation)
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, ierr.WithError(err).
			WithHintf("%s must be a date in YYYY-MM-DD format", key).
			Mark(ierr.ErrValidation)
	}
	return d, nil
}
