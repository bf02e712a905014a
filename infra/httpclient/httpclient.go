// Package httpclient performs the GET requests issued by the geocoding and
// routing clients and classifies transport failures into geo error kinds.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/kilianp07/evrange/core/geo"
)

// maxBody caps the response size read from upstream services.
const maxBody = 4 << 20

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Get issues a GET request bound to ctx and reads the whole body. Transport
// errors are returned as *geo.Error of kind Network, Timeout or Canceled;
// HTTP error statuses are left to the caller.
func Get(ctx context.Context, c *http.Client, url string, header http.Header, op, subject string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, &geo.Error{Kind: geo.KindValidation, Op: op, Subject: subject, Err: fmt.Errorf("create request: %w", err)}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return Response{}, Classify(ctx, op, subject, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Response{}, Classify(ctx, op, subject, fmt.Errorf("read body: %w", err))
	}
	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// Classify maps a transport error to a *geo.Error.
func Classify(ctx context.Context, op, subject string, err error) error {
	kind := geo.KindNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = geo.KindTimeout
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		kind = geo.KindCanceled
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = geo.KindTimeout
	}
	return &geo.Error{Kind: kind, Op: op, Subject: subject, Err: err}
}
