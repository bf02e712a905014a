package profiles

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrange/core/form"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/validation"
)

func newForm(t *testing.T) *form.Form {
	t.Helper()
	profiles, err := model.NewProfileSet(model.DefaultPresets())
	require.NoError(t, err)
	return form.New(profiles, nil, nil)
}

func serve(h http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestListHandler(t *testing.T) {
	rr := serve(NewListHandler(newForm(t)), http.MethodGet, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ListResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Profiles, 4)
	assert.Equal(t, model.CustomProfileName, resp.Profiles[0].Name)
	assert.Equal(t, model.CustomProfileName, resp.Selected)
}

func TestSelectHandler(t *testing.T) {
	f := newForm(t)
	rr := serve(NewSelectHandler(f), http.MethodPost, `{"name":"Chevy Bolt"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp FormResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Chevy Bolt", resp.Inputs.Profile)
	assert.Equal(t, "65", resp.Inputs.BatteryCapacity)
	assert.Equal(t, "170", resp.Inputs.Efficiency)
	assert.True(t, resp.CanCalculate)
}

func TestSelectHandlerErrors(t *testing.T) {
	f := newForm(t)
	h := NewSelectHandler(f)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, `{}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodPost, `{"name":"DeLorean"}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodGet, "").Code)
	assert.Equal(t, model.CustomProfileName, f.Inputs().Profile)
}

func TestResetHandler(t *testing.T) {
	f := newForm(t)
	require.NoError(t, f.Apply(map[validation.Field]string{
		validation.FieldBatteryCapacity: "50",
		validation.FieldStartLocation:   "Paris",
	}))

	rr := serve(NewResetHandler(f), http.MethodPost, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp FormResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, form.ResetMessage, resp.Message)
	assert.Equal(t, "75", resp.Inputs.BatteryCapacity)
	assert.Empty(t, resp.Inputs.StartLocation)
	assert.Empty(t, resp.Errors)
}

func TestFormHandler(t *testing.T) {
	f := newForm(t)
	require.NoError(t, f.Set(validation.FieldElevationGain, ""))

	rr := serve(NewFormHandler(f), http.MethodGet, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp FormResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Elevation gain is required.", resp.Errors[0].Message)
	assert.False(t, resp.CanCalculate)
	assert.False(t, resp.CanFetchRoute)
}
