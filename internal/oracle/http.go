package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/roach88/elemental/internal/ir"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 64 * 1024

// HTTPClient speaks the oracle wire protocol:
//
//	GET {base}add?symbols=A&symbols=B  -> {"symbol": "...", "emoji": "..."}
//	GET {base}split?symbol=S           -> [{"symbol": ..., "emoji": ...}, {...}]
//
// A failed resolution may also be reported as 200 with empty fields.
type HTTPClient struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPClient creates a client for the server at baseURL.
// A zero timeout means no per-request timeout beyond the caller's context.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse oracle url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("oracle url %q: scheme must be http or https", baseURL)
	}
	return &HTTPClient{
		base:   u,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Combine implements Oracle.
func (c *HTTPClient) Combine(ctx context.Context, a, b string) (ir.Element, error) {
	var e ir.Element
	q := url.Values{"symbols": {a, b}}
	if err := c.get(ctx, "add", q, &e); err != nil {
		return ir.Element{}, err
	}
	return e, nil
}

// Split implements Oracle.
func (c *HTTPClient) Split(ctx context.Context, symbol string) ([]ir.Element, error) {
	var elems []ir.Element
	q := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "split", q, &elems); err != nil {
		return nil, err
	}
	return elems, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base.JoinPath(path)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("oracle %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &StatusError{Code: resp.StatusCode, URL: u.String()}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("oracle %s: read body: %w", path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("oracle %s: %w: %v", path, ErrMalformed, err)
	}
	return nil
}
