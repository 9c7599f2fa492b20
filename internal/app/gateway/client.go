package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

// TokenParam is the name of the request parameter carrying the session token.
const TokenParam = "Token"

// Encoding defines how the request parameters are transmitted.
type Encoding int

const (
	EncodingQuery Encoding = iota
	EncodingForm
	EncodingJSON
	EncodingMultipart
)

func (e Encoding) String() string {
	switch e {
	case EncodingQuery:
		return "query"
	case EncodingForm:
		return "form"
	case EncodingJSON:
		return "json"
	case EncodingMultipart:
		return "multipart"
	}
	return "unknown"
}

// FilePart is an attachment of a multipart request.
type FilePart struct {
	Field    string
	FileName string
	Content  io.Reader
}

type Request struct {
	Method   string
	Path     string
	Encoding Encoding
	// Fields are sent as query parameters, form fields or multipart fields.
	Fields url.Values
	// Body is marshalled for EncodingJSON requests. It must encode to a JSON object.
	Body any
	File *FilePart
	// Authenticated requests carry the session token as parameter named Token.
	Authenticated bool
}

// TokenSource provides the token attached to authenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Observer is notified about every finished request. Status is zero for transport failures.
type Observer interface {
	ObserveRequest(endpoint string, status int, duration time.Duration)
}

type ClientOption func(*Client)

func WithHttpClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// Client talks to the SMS gateway REST API.
type Client struct {
	cfg      *config.GatewayConfig
	tokens   TokenSource
	client   *http.Client
	observer Observer
}

func NewClient(cfg *config.GatewayConfig, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		cfg:    cfg,
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return c
}

// Call executes the request and decodes the Response member of the success envelope into out.
// out may be nil if the response payload is not needed.
func (c *Client) Call(ctx context.Context, req Request, out any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := decodeSuccess(resp.Body, out); err != nil {
		return &domain.ApiError{Endpoint: req.Path, Status: resp.StatusCode, Cause: err}
	}
	return nil
}

// Stream executes the request and copies the raw success body to w.
func (c *Client) Stream(ctx context.Context, req Request, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return 0, err
	}
	defer closeBody(resp.Body)

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to copy response of %s: %w", req.Path, err)
	}
	return n, nil
}

// do sends the request. Non-2xx responses are returned as *domain.ApiError, the body is closed in that case.
func (c *Client) do(ctx context.Context, req Request) (*http.Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", req.Path, err)
	}

	requestId := uuid.New().String()
	httpReq.Header.Set("X-Request-ID", requestId)
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(req.Path, 0, duration)
		slog.Debug("gateway request failed", "path", req.Path, "request", requestId, "error", err)
		return nil, &domain.ApiError{Endpoint: req.Path, Cause: err}
	}
	c.observe(req.Path, resp.StatusCode, duration)
	slog.Debug("gateway request finished", "path", req.Path, "request", requestId,
		"status", resp.StatusCode, "duration", duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer closeBody(resp.Body)
		return nil, &domain.ApiError{
			Endpoint: req.Path,
			Status:   resp.StatusCode,
			Errors:   decodeErrors(resp.Body),
		}
	}

	return resp, nil
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, status, duration)
	}
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	fullUrl, err := url.JoinPath(c.cfg.BaseUrl, req.Path)
	if err != nil {
		return nil, err
	}

	fields := url.Values{}
	for k, v := range req.Fields {
		fields[k] = v
	}
	token := ""
	if req.Authenticated {
		token, _ = c.tokens.Token(ctx)
		fields.Set(TokenParam, token)
	}

	var body io.Reader
	contentType := ""
	switch req.Encoding {
	case EncodingQuery:
		fullUrl += "?" + fields.Encode()
	case EncodingForm:
		body = strings.NewReader(fields.Encode())
		contentType = "application/x-www-form-urlencoded"
	case EncodingJSON:
		payload, err := jsonBody(req.Body, req.Authenticated, token)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	case EncodingMultipart:
		buf, ct, err := multipartBody(fields, req.File)
		if err != nil {
			return nil, err
		}
		body = buf
		contentType = ct
	default:
		return nil, fmt.Errorf("unsupported encoding %d", req.Encoding)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullUrl, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, nil
}

// jsonBody encodes the body as JSON object with the token as top-level member.
func jsonBody(body any, authenticated bool, token string) ([]byte, error) {
	obj := map[string]json.RawMessage{}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("body is not a JSON object: %w", err)
		}
	}
	if authenticated {
		rawToken, _ := json.Marshal(token)
		obj[TokenParam] = rawToken
	}

	return json.Marshal(obj)
}

func multipartBody(fields url.Values, file *FilePart) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for key, values := range fields {
		for _, value := range values {
			if err := mw.WriteField(key, value); err != nil {
				return nil, "", err
			}
		}
	}

	if file != nil {
		part, err := mw.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to read file %s: %w", file.FileName, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf, mw.FormDataContentType(), nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		slog.Error("failed to close response body", "error", err)
	}
}
