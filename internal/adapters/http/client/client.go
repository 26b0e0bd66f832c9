// Package client is the typed HTTP client for the classmates roster backend.
//
// Every method maps to exactly one backend endpoint and issues exactly one
// request. Successful payloads are decoded and returned as-is; failures are
// logged once and returned as *RequestError. There is no retry and no cache.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/classmates/internal/domain/model"
	"github.com/okian/classmates/pkg/logger"
	"github.com/okian/classmates/pkg/metrics"
)

// DefaultBasePath is the path prefix of every backend endpoint.
const DefaultBasePath = "/api"

// Header names set on every request.
const (
	headerRequestID   = "X-Request-ID"
	headerAccept      = "Accept"
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// Operation names used in logs, metrics and RequestError.Op.
const (
	OpList        = "list"
	OpGet         = "get"
	OpCreate      = "create"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpStatistics  = "statistics"
	OpBatchUpdate = "batch_update"
)

// Doer is the transport the client sends requests through. *http.Client
// satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the roster backend. It holds only immutable configuration
// and is safe for concurrent use.
type Client struct {
	baseURL string
	doer    Doer
	logger  logger.Logger
	timeout time.Duration
	path    string
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets the transport. The default is an *http.Client with no
// timeout of its own.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBasePath overrides DefaultBasePath.
func WithBasePath(p string) Option {
	return func(c *Client) {
		c.path = p
	}
}

// WithTimeout sets a timeout on the default transport. It has no effect when
// a transport is supplied with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a Client for the backend at origin, e.g. "http://localhost:5001".
func New(origin string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q needs a scheme and host", ErrInvalidBaseURL, origin)
	}

	c := &Client{
		logger: logger.Nop(),
		path:   DefaultBasePath,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		c.doer = &http.Client{Timeout: c.timeout}
	}

	base := strings.TrimRight(u.String(), "/")
	if p := strings.Trim(c.path, "/"); p != "" {
		base += "/" + p
	}
	c.baseURL = base
	return c, nil
}

// BaseURL returns the absolute URL every endpoint path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List returns every classmate on the roster. Members the backend adds
// beyond the modelled fields are kept in each record's Extra.
func (c *Client) List(ctx context.Context) ([]model.Person, error) {
	var out []model.Person
	err := c.do(ctx, call{
		op:      OpList,
		method:  http.MethodGet,
		path:    "/classmates",
		failure: "failed to list classmates",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the classmate with the given id, unknown members in Extra.
func (c *Client) Get(ctx context.Context, id int64) (model.Person, error) {
	var out model.Person
	err := c.do(ctx, call{
		op:      OpGet,
		method:  http.MethodGet,
		path:    classmatePath(id),
		id:      id,
		hasID:   true,
		failure: "failed to fetch classmate",
	}, &out)
	if err != nil {
		return model.Person{}, err
	}
	return out, nil
}

// Create adds a classmate and returns the record with its server-assigned id.
func (c *Client) Create(ctx context.Context, p model.Person) (model.Person, error) {
	var out model.Person
	err := c.do(ctx, call{
		op:      OpCreate,
		method:  http.MethodPost,
		path:    "/classmates",
		body:    p,
		failure: "failed to create classmate",
	}, &out)
	if err != nil {
		return model.Person{}, err
	}
	return out, nil
}

// Update sends the patch for id and returns the updated record.
func (c *Client) Update(ctx context.Context, id int64, patch model.PersonPatch) (model.Person, error) {
	var out model.Person
	err := c.do(ctx, call{
		op:      OpUpdate,
		method:  http.MethodPut,
		path:    classmatePath(id),
		id:      id,
		hasID:   true,
		body:    patch,
		failure: "failed to update classmate",
	}, &out)
	if err != nil {
		return model.Person{}, err
	}
	return out, nil
}

// Delete removes the classmate with the given id.
func (c *Client) Delete(ctx context.Context, id int64) (model.DeleteResult, error) {
	var out model.DeleteResult
	err := c.do(ctx, call{
		op:         OpDelete,
		method:     http.MethodDelete,
		path:       classmatePath(id),
		id:         id,
		hasID:      true,
		allowEmpty: true,
		failure:    "failed to delete classmate",
	}, &out)
	if err != nil {
		return model.DeleteResult{}, err
	}
	return out, nil
}

// Statistics returns the roster summary. Aggregates other than the totals
// and the city and country counts are kept in Extra.
func (c *Client) Statistics(ctx context.Context) (model.Statistics, error) {
	var out model.Statistics
	err := c.do(ctx, call{
		op:      OpStatistics,
		method:  http.MethodGet,
		path:    "/statistics",
		failure: "failed to fetch statistics",
	}, &out)
	if err != nil {
		return model.Statistics{}, err
	}
	return out, nil
}

// BatchUpdate sends all items, in order, in a single request.
func (c *Client) BatchUpdate(ctx context.Context, items []model.BatchItem) (model.BatchResult, error) {
	if items == nil {
		items = []model.BatchItem{}
	}
	var out model.BatchResult
	err := c.do(ctx, call{
		op:         OpBatchUpdate,
		method:     http.MethodPost,
		path:       "/classmates/batch",
		body:       items,
		allowEmpty: true,
		failure:    "failed to batch update classmates",
	}, &out)
	if err != nil {
		return model.BatchResult{}, err
	}
	return out, nil
}

func classmatePath(id int64) string {
	return "/classmates/" + strconv.FormatInt(id, 10)
}

// call describes one backend exchange.
type call struct {
	op         string
	method     string
	path       string
	id         int64
	hasID      bool
	body       any
	allowEmpty bool
	failure    string
}

func (cl call) fail(kind string, status int, msg string, err error) *RequestError {
	return &RequestError{
		Op:         cl.op,
		Kind:       kind,
		Method:     cl.method,
		Path:       cl.path,
		ID:         cl.id,
		HasID:      cl.hasID,
		StatusCode: status,
		Message:    msg,
		Err:        err,
	}
}

// do runs the exchange, records metrics and logs a failure exactly once.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	start := time.Now()
	status, rerr := c.exchange(ctx, cl, out)
	durationMs := float64(time.Since(start).Microseconds()) / 1000

	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	metrics.RecordClientRequest(cl.op, cl.method, code)
	metrics.RecordClientRequestDuration(cl.op, cl.method, code, durationMs)

	if rerr == nil {
		return nil
	}
	metrics.RecordClientError(cl.op, rerr.Kind)

	fields := []logger.Field{
		logger.String("op", cl.op),
		logger.String("method", cl.method),
		logger.String("path", cl.path),
	}
	if cl.hasID {
		fields = append(fields, logger.Int64("id", cl.id))
	}
	if status > 0 {
		fields = append(fields, logger.Int("status", status))
	}
	fields = append(fields, logger.Error(rerr))
	c.logger.Error(ctx, cl.failure, fields...)
	return rerr
}

// exchange performs the HTTP round trip and decodes the payload into out.
// The returned status is 0 when no response was received.
func (c *Client) exchange(ctx context.Context, cl call, out any) (int, *RequestError) {
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return 0, cl.fail(KindEncode, 0, "", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return 0, cl.fail(KindRequest, 0, "", err)
	}
	req.Header.Set(headerAccept, contentTypeJSON)
	req.Header.Set(headerRequestID, uuid.NewString())
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return 0, cl.fail(KindTransport, 0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, cl.fail(KindRead, resp.StatusCode, "", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode, cl.fail(KindStatus, resp.StatusCode, backendMessage(data), ErrUnexpectedStatus)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		if cl.allowEmpty {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, cl.fail(KindDecode, resp.StatusCode, "", ErrEmptyResponse)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, cl.fail(KindDecode, resp.StatusCode, "", err)
	}
	return resp.StatusCode, nil
}

// maxMessageLen caps how much of a non-JSON error body is kept.
const maxMessageLen = 256

// backendMessage extracts the backend's error text. The backend replies with
// {"error": "..."}; anything else is kept verbatim, truncated.
func backendMessage(data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen]
	}
	return msg
}

// IsNotFound reports whether err is a failed call the backend answered with 404.
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}
