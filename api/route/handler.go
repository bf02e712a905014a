// Package route exposes the route data fetch over HTTP.
package route

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kilianp07/evrange/api/httpjson"
	"github.com/kilianp07/evrange/core/form"
	"github.com/kilianp07/evrange/core/geo"
	"github.com/kilianp07/evrange/core/routefetch"
	"github.com/kilianp07/evrange/core/validation"
)

// Request optionally replaces the form locations before fetching.
type Request struct {
	Start string `json:"start" validate:"omitempty,max=256"`
	End   string `json:"end" validate:"omitempty,max=256"`
}

// Response is the fetch outcome together with the resulting form inputs.
type Response struct {
	routefetch.Outcome
	Kind   string            `json:"kind,omitempty"`
	Inputs validation.Inputs `json:"inputs"`
}

// StatusResponse is the last status update of the orchestrator.
type StatusResponse struct {
	Status routefetch.Status `json:"status"`
	Busy   bool              `json:"busy"`
}

// NewFetchHandler returns the handler of POST /api/route. It blocks until the
// fetch ends and answers 409 while another fetch is running.
func NewFetchHandler(o *routefetch.Orchestrator, f *form.Form) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httpjson.Allow(w, r, http.MethodPost) {
			return
		}
		var req Request
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if o.Busy() {
			httpjson.Error(w, http.StatusConflict, routefetch.ErrFetchInProgress.Message)
			return
		}
		edits := map[validation.Field]string{}
		if req.Start != "" {
			edits[validation.FieldStartLocation] = req.Start
		}
		if req.End != "" {
			edits[validation.FieldEndLocation] = req.End
		}
		if len(edits) > 0 {
			if err := f.Apply(edits); err != nil {
				httpjson.Error(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		in := f.Inputs()
		out, err := o.Fetch(r.Context(), in.StartLocation, in.EndLocation, f)
		if errors.Is(err, routefetch.ErrFetchInProgress) {
			httpjson.Error(w, http.StatusConflict, out.Message)
			return
		}
		status := http.StatusOK
		if geo.KindOf(err) == geo.KindValidation {
			status = http.StatusBadRequest
		}
		httpjson.Write(w, status, Response{Outcome: out, Kind: out.KindName(), Inputs: f.Inputs()})
	})
}

// NewStatusHandler returns the handler of GET /api/route/status.
func NewStatusHandler(o *routefetch.Orchestrator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httpjson.Allow(w, r, http.MethodGet) {
			return
		}
		httpjson.Write(w, http.StatusOK, StatusResponse{Status: o.LastStatus(), Busy: o.Busy()})
	})
}

// maxHistory caps the limit query parameter.
const maxHistory = 500

// NewHistoryHandler returns the handler of GET /api/route/history?limit=n.
// A nil store answers 404.
func NewHistoryHandler(h routefetch.History) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httpjson.Allow(w, r, http.MethodGet) {
			return
		}
		if h == nil {
			httpjson.Error(w, http.StatusNotFound, "fetch history is not enabled")
			return
		}
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxHistory {
				httpjson.Error(w, http.StatusBadRequest, "limit must be between 1 and 500")
				return
			}
			limit = n
		}
		recs, err := h.Recent(r.Context(), limit)
		if err != nil {
			httpjson.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpjson.Write(w, http.StatusOK, recs)
	})
}
