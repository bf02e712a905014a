// Package nominatim implements geo.Geocoder against the OpenStreetMap
// Nominatim search API.
package nominatim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/evrange/core/geo"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/infra/auth"
	"github.com/kilianp07/evrange/infra/httpclient"
	"github.com/kilianp07/evrange/infra/logger"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "EVRangeCalculator/1.0"
	DefaultTimeout   = 15 * time.Second
)

// Config defines the geocoding endpoint. The service usage policy requires an
// identifying User-Agent.
type Config struct {
	BaseURL        string `json:"base_url" validate:"required,url"`
	UserAgent      string `json:"user_agent" validate:"required"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"gte=0"`
	// Auth is only needed for self-hosted servers behind a token gateway.
	Auth auth.Conf `json:"auth"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// Timeout returns the per-call bound.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Client resolves place names with a single search request limited to the
// best match. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	endpoint  string
	userAgent string
	timeout   time.Duration
	log       logger.Logger
}

// NewClient creates a Client. A nil httpClient uses a dedicated client
// without its own timeout; the per-call bound comes from the config.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.SetDefaults()
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		http:      httpClient,
		endpoint:  strings.TrimSuffix(cfg.BaseURL, "/") + "/search",
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout(),
		log:       logger.New("nominatim"),
	}
}

type place struct {
	Lat         json.RawMessage `json:"lat"`
	Lon         json.RawMessage `json:"lon"`
	DisplayName string          `json:"display_name"`
}

// Geocode returns the coordinate of the best match for name.
func (c *Client) Geocode(ctx context.Context, name string) (_ model.GeoCoordinate, err error) {
	defer logger.Time(c.log, "nominatim.Geocode")(&err)

	name = strings.TrimSpace(name)
	if name == "" {
		return model.GeoCoordinate{}, &geo.Error{Kind: geo.KindValidation, Op: "geocode", Message: "location name cannot be empty"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("q", name)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("addressdetails", "0")
	h := http.Header{}
	h.Set("User-Agent", c.userAgent)

	resp, err := httpclient.Get(ctx, c.http, c.endpoint+"?"+q.Encode(), h, "geocode", name)
	if err != nil {
		return model.GeoCoordinate{}, err
	}
	if !resp.OK() {
		return model.GeoCoordinate{}, &geo.Error{
			Kind:    geo.KindUpstream,
			Op:      "geocode",
			Subject: name,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, snippet(resp.Body)),
		}
	}

	var places []place
	if err := json.Unmarshal(resp.Body, &places); err != nil {
		return model.GeoCoordinate{}, &geo.Error{Kind: geo.KindUpstreamFormat, Op: "geocode", Subject: name, Err: err}
	}
	if len(places) == 0 {
		return model.GeoCoordinate{}, &geo.Error{Kind: geo.KindNotFound, Op: "geocode", Subject: name}
	}

	rawLat, rawLon := rawText(places[0].Lat), rawText(places[0].Lon)
	lat, latErr := strconv.ParseFloat(rawLat, 64)
	lon, lonErr := strconv.ParseFloat(rawLon, 64)
	if latErr != nil || lonErr != nil || !inRange(lat, 90) || !inRange(lon, 180) {
		return model.GeoCoordinate{}, &geo.Error{
			Kind:    geo.KindParseFailure,
			Op:      "geocode",
			Subject: name,
			RawLat:  rawLat,
			RawLon:  rawLon,
		}
	}
	c.log.Debugf("resolved %q to %.6f,%.6f (%s)", name, lat, lon, places[0].DisplayName)
	return model.GeoCoordinate{Lat: lat, Lon: lon}, nil
}

// rawText returns a JSON string without quotes, or the literal JSON text for
// any other value. Missing fields yield "".
func rawText(m json.RawMessage) string {
	m = bytes.TrimSpace(m)
	if len(m) == 0 || string(m) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(m, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(m)
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// inRange reports whether v is a finite number within [-limit, limit].
func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -limit && v <= limit
}
