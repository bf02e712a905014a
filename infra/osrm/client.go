// Package osrm implements geo.Router against the OSRM route service.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
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
	DefaultBaseURL = "https://router.project-osrm.org"
	DefaultProfile = "driving"
	DefaultTimeout = 30 * time.Second
)

// Config defines the routing endpoint.
type Config struct {
	BaseURL        string    `json:"base_url" validate:"required,url"`
	Profile        string    `json:"profile" validate:"required"`
	UserAgent      string    `json:"user_agent"`
	TimeoutSeconds int       `json:"timeout_seconds" validate:"gte=0"`
	Auth           auth.Conf `json:"auth"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Profile == "" {
		c.Profile = DefaultProfile
	}
}

// Timeout returns the per-call bound.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Client requests the fastest route without alternatives, steps or geometry.
type Client struct {
	http      *http.Client
	baseURL   string
	profile   string
	userAgent string
	timeout   time.Duration
	log       logger.Logger
}

// NewClient creates a Client. A nil httpClient uses a dedicated client.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.SetDefaults()
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		profile:   cfg.Profile,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout(),
		log:       logger.New("osrm"),
	}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// formatCoord renders a coordinate with six fractional digits and '.' as
// decimal separator.
func formatCoord(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// Path returns the request path for the pair, "lon,lat;lon,lat" ordered.
func (c *Client) Path(from, to model.GeoCoordinate) string {
	return fmt.Sprintf("/route/v1/%s/%s,%s;%s,%s", c.profile,
		formatCoord(from.Lon), formatCoord(from.Lat), formatCoord(to.Lon), formatCoord(to.Lat))
}

// Route returns the distance and duration of the fastest driving route.
func (c *Client) Route(ctx context.Context, from, to model.GeoCoordinate) (_ model.RouteQueryResult, err error) {
	defer logger.Time(c.log, "osrm.Route")(&err)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	path := c.Path(from, to)
	subject := strings.TrimPrefix(path, "/route/v1/"+c.profile+"/")
	var h http.Header
	if c.userAgent != "" {
		h = http.Header{}
		h.Set("User-Agent", c.userAgent)
	}
	resp, err := httpclient.Get(ctx, c.http, c.baseURL+path+"?overview=false&alternatives=false&steps=false", h, "route", subject)
	if err != nil {
		return model.RouteQueryResult{}, err
	}

	// OSRM reports failures as JSON with a code on 4xx responses too.
	var rr routeResponse
	if err := json.Unmarshal(resp.Body, &rr); err != nil {
		if !resp.OK() {
			return model.RouteQueryResult{}, &geo.Error{Kind: geo.KindUpstream, Op: "route", Subject: subject,
				Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
		}
		return model.RouteQueryResult{}, &geo.Error{Kind: geo.KindUpstreamFormat, Op: "route", Subject: subject, Err: err}
	}
	if rr.Code != "Ok" {
		msg := rr.Message
		if msg == "" {
			msg = "Route calculation failed"
		}
		return model.RouteQueryResult{}, &geo.Error{Kind: geo.KindUpstream, Op: "route", Subject: subject, Message: msg}
	}
	if len(rr.Routes) == 0 {
		return model.RouteQueryResult{}, &geo.Error{Kind: geo.KindNoRouteFound, Op: "route", Subject: subject}
	}
	r := rr.Routes[0]
	return model.RouteQueryResult{DistanceMeters: r.Distance, DurationSeconds: r.Duration}, nil
}
