// Package profiles exposes the vehicle profiles and the shared form state.
package profiles

import (
	"net/http"

	"github.com/kilianp07/evrange/api/httpjson"
	"github.com/kilianp07/evrange/core/form"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/validation"
)

// ListResponse lists the profiles in display order.
type ListResponse struct {
	Profiles []model.VehicleProfile `json:"profiles"`
	Selected string                 `json:"selected"`
}

// SelectRequest names the profile to select.
type SelectRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// FormResponse is the current form state.
type FormResponse struct {
	Inputs        validation.Inputs  `json:"inputs"`
	Errors        []validation.Error `json:"errors"`
	CanCalculate  bool               `json:"can_calculate"`
	CanFetchRoute bool               `json:"can_fetch_route"`
	Message       string             `json:"message,omitempty"`
}

// NewListHandler returns the handler of GET /api/profiles.
func NewListHandler(f *form.Form) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httpjson.Allow(w, r, http.MethodGet) {
			return
		}
		httpjson.Write(w, http.StatusOK, ListResponse{Profiles: f.Profiles(), Selected: f.Inputs().Profile})
	})
}

// NewSelectHandler returns the handler of POST /api/profiles/select.
func NewSelectHandler(f *form.Form) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httpjson.Allow(w, r, http.MethodPost) {
			return
		}
		var req SelectRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := f.SelectProfile(req.Name); err != nil {
			httpjson.Error(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Write(w, http.StatusOK, snapshot(f, ""))
	})
}

// NewResetHandler returns the handler of POST /api/profiles/reset.
func NewResetHandler(f *form.Form) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httpjson.Allow(w, r, http.MethodPost) {
			return
		}
		msg := f.Reset()
		httpjson.Write(w, http.StatusOK, snapshot(f, msg))
	})
}

// NewFormHandler returns the handler of GET /api/form.
func NewFormHandler(f *form.Form) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httpjson.Allow(w, r, http.MethodGet) {
			return
		}
		httpjson.Write(w, http.StatusOK, snapshot(f, ""))
	})
}

func snapshot(f *form.Form, msg string) FormResponse {
	in := f.Inputs()
	errs := validation.Validate(in)
	if errs == nil {
		errs = []validation.Error{}
	}
	return FormResponse{
		Inputs:        in,
		Errors:        errs,
		CanCalculate:  validation.CanCalculate(in),
		CanFetchRoute: validation.CanFetchRoute(in),
		Message:       msg,
	}
}
