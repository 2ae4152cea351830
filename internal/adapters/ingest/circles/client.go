// Package circles provides a resilient JSON-RPC client for the Circles circles_query endpoint
package circles

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	perr "circlesync/internal/platform/errors"
	"circlesync/internal/platform/logger"
)

const (
	urlDefault       = "https://rpc.aboutcircles.com/"
	defaultTimeout   = 30 * time.Second
	defaultUA        = "circlesync"
	defaultMaxRetry  = 3
	defaultRetryBase = 250 * time.Millisecond
	maxBackoff       = 10 * time.Second
	method           = "circles_query"
)

// Options configures the Client
type Options struct {
	URL       string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transport failures, 429 and 5xx
	MaxRetries int
	RetryBase  time.Duration

	// Observe, when set, receives every call's table, outcome and latency
	Observe func(table, outcome string, d time.Duration)
}

// QueryRequest is one page request
// Filter entries are ANDed; a non nil Cursor adds the continuation predicate
type QueryRequest struct {
	Namespace string
	Table     string
	Columns   []string
	Filter    []Filter
	Order     []Order
	Limit     int
	Offset    int
	Cursor    *Cursor
}

// Page is one normalized result page
// Next is nil once fewer rows than Limit come back or rows carry no position
type Page struct {
	Rows []Row
	Next *Cursor
}

// Client issues circles_query calls
type Client struct {
	http  *http.Client
	opts  Options
	ids   atomic.Int64
	log   logger.Logger
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.URL == "" {
		o.URL = urlDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("circles"),
		now:   time.Now,
		sleep: sleepCtx,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type queryParams struct {
	Namespace string   `json:"Namespace"`
	Table     string   `json:"Table"`
	Columns   []string `json:"Columns"`
	Filter    []Filter `json:"Filter"`
	Order     []Order  `json:"Order"`
	Limit     int      `json:"Limit"`
	Offset    int      `json:"Offset,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (q QueryRequest) params() queryParams {
	fs := append([]Filter(nil), q.Filter...)
	if q.Cursor != nil {
		fs = append(fs, CursorFilter(*q.Cursor))
	}
	if len(fs) > 1 {
		fs = []Filter{And(fs...)}
	}
	cols := q.Columns
	if cols == nil {
		cols = []string{}
	}
	if fs == nil {
		fs = []Filter{}
	}
	ord := q.Order
	if ord == nil {
		ord = []Order{}
	}
	return queryParams{
		Namespace: q.Namespace,
		Table:     q.Table,
		Columns:   cols,
		Filter:    fs,
		Order:     ord,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
}

// Query fetches one page and derives the next cursor from its last row
func (c *Client) Query(ctx context.Context, q QueryRequest) (Page, error) {
	start := c.now()
	rows, err := c.call(ctx, q)
	c.observe(q.Table, err, c.now().Sub(start))
	if err != nil {
		return Page{}, err
	}
	p := Page{Rows: rows}
	if q.Limit > 0 && len(rows) >= q.Limit {
		if cur, ok := PositionOf(rows[len(rows)-1]); ok {
			p.Next = &cur
		}
	}
	return p, nil
}

func (c *Client) observe(table string, err error, d time.Duration) {
	if c.opts.Observe == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = perr.CodeOf(err).String()
	}
	c.opts.Observe(table, outcome, d)
}

func (c *Client) call(ctx context.Context, q QueryRequest) ([]Row, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.ids.Add(1),
		Method:  method,
		Params:  []any{q.params()},
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeRemoteQuery, "circles encode request")
	}

	attempts := 0
	for {
		raw, err := c.post(ctx, body)
		if err == nil {
			rows, nerr := c.decode(raw)
			if nerr == nil {
				c.log.Debug().
					Str("table", q.Table).
					Int("limit", q.Limit).
					Int("rows", len(rows)).
					Int("attempt", attempts).
					Msg("circles query")
			}
			return rows, nerr
		}
		if !perr.Retryable(err) || attempts >= c.opts.MaxRetries {
			return nil, perr.Wrapf(err, perr.ErrorCodeRemoteQuery, "circles query %s failed", q.Table)
		}
		back := c.backoff(attempts)
		c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Str("table", q.Table).Msg("circles query retrying")
		if serr := c.sleep(ctx, back); serr != nil {
			return nil, perr.Wrapf(serr, perr.ErrorCodeRemoteQuery, "circles query %s cancelled", q.Table)
		}
		attempts++
	}
}

// post sends one request and classifies the outcome
// transport errors, 429 and 5xx come back retryable
func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeRemoteQuery, "circles new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "circles transport")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "circles rate limited")
	case resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "circles server status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, perr.RemoteQueryf("circles unexpected status %d body %s", resp.StatusCode, string(tail))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "circles read body")
	}
	return b, nil
}

func (c *Client) decode(b []byte) ([]Row, error) {
	var rr rpcResponse
	if err := json.Unmarshal(b, &rr); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeRemoteQuery, "circles invalid json-rpc response")
	}
	if rr.Error != nil {
		return nil, perr.RemoteQueryf("circles rpc error %d: %s", rr.Error.Code, rr.Error.Message)
	}
	if len(rr.Result) == 0 || string(rr.Result) == "null" {
		return nil, perr.RemoteQueryf("circles response has no result")
	}
	return normalize(rr.Result)
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxBackoff {
		d = maxBackoff
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
