package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEstimateCmd(t *testing.T) {
	out, err := run(t, "estimate", "--profile", "Nissan Leaf", "--distance", "300")
	require.NoError(t, err)
	assert.Equal(t, "Estimated Range: 250.00 km\nCan complete 300.00 km route: No\n", out)
}

func TestEstimateCmdConditions(t *testing.T) {
	out, err := run(t, "estimate", "--battery", "80", "--efficiency", "200", "--weather", "Snowy", "--distance", "")
	require.NoError(t, err)
	assert.Equal(t, "Estimated Range: 500.00 km\n(Distance for route feasibility not provided)\n", out)
}

func TestEstimateCmdInvalid(t *testing.T) {
	_, err := run(t, "estimate", "--battery", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Battery capacity")

	_, err = run(t, "estimate", "--profile", "DeLorean")
	assert.EqualError(t, err, `unknown profile "DeLorean"`)
}

func TestProfilesCmd(t *testing.T) {
	out, err := run(t, "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Custom")
	assert.Contains(t, out, "Tesla Model 3 LR")
	assert.Contains(t, out, "Chevy Bolt")
}

func TestRouteCmd(t *testing.T) {
	nom := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"48.8566","lon":"2.3522"}]`))
	}))
	defer nom.Close()
	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":250000,"duration":9000}]}`))
	}))
	defer osrm.Close()
	t.Setenv("EVRANGE_GEOCODER__BASE_URL", nom.URL)
	t.Setenv("EVRANGE_ROUTER__BASE_URL", osrm.URL)

	out, err := run(t, "route", "Paris", "Orleans", "--estimate")
	require.NoError(t, err)
	assert.Contains(t, out, "[resolving_start] Finding start location coordinates...")
	assert.Contains(t, out, "[succeeded] Route found! Distance: 250.0 km, Duration: 02:30:00. Please enter elevation manually.")
	assert.Contains(t, out, "Estimated Range: 468.75 km\nCan complete 250.00 km route: Yes")
}

func TestRouteCmdFailure(t *testing.T) {
	nom := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer nom.Close()
	t.Setenv("EVRANGE_GEOCODER__BASE_URL", nom.URL)

	out, err := run(t, "route", "Nowhere", "Orleans")
	require.Error(t, err)
	assert.Contains(t, out, "[failed] No coordinates found for Nowhere.")
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("EVRANGE_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("EVRANGE_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("EVRANGE_TEST_VALUE"))

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "from-file", os.Getenv("EVRANGE_TEST_VALUE"))
	assert.NoError(t, loadEnv(filepath.Join(dir, "missing.env")))
	assert.NoError(t, loadEnv(""))
}

func TestChartCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "range.html")
	out, err := run(t, "chart", "--profile", "Chevy Bolt", "--out", path)
	require.NoError(t, err)
	assert.Equal(t, "chart written to "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Chevy Bolt")
	assert.Contains(t, string(data), "Rainy")
}

func TestProfilesCmdFormats(t *testing.T) {
	out, err := run(t, "profiles", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "- name: Nissan Leaf\n  battery_kwh: 40\n  efficiency_wh_per_km: 160\n")

	out, err = run(t, "profiles", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Tesla Model 3 LR"`)

	_, err = run(t, "profiles", "-o", "xml")
	assert.EqualError(t, err, `unknown output "xml", want table, json or yaml`)
}
