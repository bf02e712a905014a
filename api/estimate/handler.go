// Package estimate exposes the range calculation over HTTP.
package estimate

import (
	"net/http"

	"github.com/kilianp07/evrange/api/httpjson"
	"github.com/kilianp07/evrange/core/form"
	"github.com/kilianp07/evrange/core/validation"
	"github.com/kilianp07/evrange/infra/chart"
)

// Request carries field edits applied before the action runs. Values are
// keyed by field name, e.g. "batteryCapacity".
type Request struct {
	Profile string                      `json:"profile" validate:"omitempty,max=64"`
	Values  map[validation.Field]string `json:"values" validate:"omitempty,dive,keys,oneof=batteryCapacity efficiency distance elevationGain drivingStyleFactor weatherSelection startLocation endLocation,endkeys,max=256"`
}

// FailureResponse is returned when the inputs cannot be calculated.
type FailureResponse struct {
	Summary string             `json:"summary"`
	Errors  []validation.Error `json:"errors"`
}

// ValidateResponse reports the field errors and the action gates.
type ValidateResponse struct {
	Errors        []validation.Error `json:"errors"`
	CanCalculate  bool               `json:"can_calculate"`
	CanFetchRoute bool               `json:"can_fetch_route"`
}

// NewEstimateHandler returns the handler of POST /api/estimate. The request
// edits are kept in the form before calculating.
func NewEstimateHandler(f *form.Form) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httpjson.Allow(w, r, http.MethodPost) {
			return
		}
		var req Request
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Profile != "" {
			if _, err := f.SelectProfile(req.Profile); err != nil {
				httpjson.Error(w, http.StatusNotFound, err.Error())
				return
			}
		}
		if err := f.Apply(req.Values); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err := f.Calculate()
		if err != nil {
			httpjson.Write(w, http.StatusUnprocessableEntity, FailureResponse{Summary: res.Summary, Errors: nonNil(f.Errors())})
			return
		}
		httpjson.Write(w, http.StatusOK, res)
	})
}

// NewValidateHandler returns the handler of POST /api/validate. The edits are
// checked against a copy of the form inputs and are not kept.
func NewValidateHandler(f *form.Form) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httpjson.Allow(w, r, http.MethodPost) {
			return
		}
		var req Request
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		in := f.Inputs()
		if req.Profile != "" {
			in.Profile = req.Profile
		}
		for field, v := range req.Values {
			in = in.With(field, v)
		}
		httpjson.Write(w, http.StatusOK, ValidateResponse{
			Errors:        nonNil(validation.Validate(in)),
			CanCalculate:  validation.CanCalculate(in),
			CanFetchRoute: validation.CanFetchRoute(in),
		})
	})
}

// NewChartHandler returns the handler of GET /api/chart: an HTML page
// plotting the range of the current inputs per weather and driving style.
func NewChartHandler(f *form.Form) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httpjson.Allow(w, r, http.MethodGet) {
			return
		}
		in := f.Inputs()
		params, err := validation.Parse(in)
		if err != nil {
			httpjson.Write(w, http.StatusUnprocessableEntity, FailureResponse{Summary: err.Error(), Errors: nonNil(validation.Validate(in))})
			return
		}
		page, err := chart.RangeHTML(in.Profile, params)
		if err != nil {
			httpjson.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})
}

func nonNil(errs []validation.Error) []validation.Error {
	if errs == nil {
		return []validation.Error{}
	}
	return errs
}
