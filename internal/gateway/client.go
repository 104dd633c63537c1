package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediastorehq/storefront-go/pkg/config"
	pkgerrors "github.com/mediastorehq/storefront-go/pkg/errors"
	"github.com/mediastorehq/storefront-go/pkg/logger"
	"github.com/mediastorehq/storefront-go/pkg/metrics"
)

var errLoggerRequired = errors.New("gateway logger is required")

// Client centralizes auth headers, logging, metrics, and error mapping for
// every call against the storefront backend.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	apiKey     string
	userAgent  string
	logger     *logger.Logger
	metrics    *metrics.GatewayMetrics
}

// NewClient validates the configuration and builds the shared HTTP client.
// Metrics may be nil when metric collection is disabled.
func NewClient(cfg config.GatewayConfig, logg *logger.Logger, m *metrics.GatewayMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("gateway base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gateway base url must be http or https, got %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		userAgent:  cfg.UserAgent,
		logger:     logg,
		metrics:    m,
	}, nil
}

// call captures one request against the backend. out, when non-nil, receives
// the decoded JSON response body.
type call struct {
	op      string
	method  string
	path    string
	query   url.Values
	headers map[string]string
	body    any
	out     any
	fields  map[string]any
}

// apiError is the backend's error envelope.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (c *Client) do(ctx context.Context, req call) error {
	c.log(ctx, "request", req.op, req.fields)

	var payload io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s request", req.op))
		}
		payload = bytes.NewReader(encoded)
	}

	// req.path arrives with its segments already percent-encoded; keeping
	// RawPath in sync stops URL.String from encoding them a second time.
	target := *c.baseURL
	rawPath := strings.TrimRight(target.EscapedPath(), "/") + req.path
	unescaped, err := url.PathUnescape(rawPath)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s path", req.op))
	}
	target.Path = unescaped
	target.RawPath = rawPath
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s request", req.op))
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("X-Api-Key", c.apiKey)
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	for key, value := range req.headers {
		if value != "" {
			httpReq.Header.Set(key, value)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.metrics.ObserveDuration(req.op, time.Since(started))
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s failed", req.op))
		c.observeFailure(ctx, req.op, wrapped)
		return wrapped
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		wrapped := c.mapErrorResponse(resp, req.op)
		c.observeFailure(ctx, req.op, wrapped)
		return wrapped
	}

	if req.out != nil {
		if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
			wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", req.op))
			c.observeFailure(ctx, req.op, wrapped)
			return wrapped
		}
	}

	c.metrics.IncSuccess(req.op)
	c.log(ctx, "response", req.op, map[string]any{"status": resp.StatusCode})
	return nil
}

func (c *Client) observeFailure(ctx context.Context, op string, err error) {
	code := string(pkgerrors.CodeInternal)
	if typed := pkgerrors.As(err); typed != nil {
		code = string(typed.Code())
	}
	c.metrics.IncFailure(op, code)
	c.log(ctx, "error", op, map[string]any{"error": err.Error()})
}

func (c *Client) mapErrorResponse(resp *http.Response, op string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	message := strings.TrimSpace(string(raw))

	var envelope apiError
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		message = envelope.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	code := codeForStatus(resp.StatusCode)
	return pkgerrors.New(code, fmt.Sprintf("%s failed: %s", op, message))
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("gateway %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("gateway %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "key", "email", "phone", "address"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
