package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"feedctl/internal/service"
	"feedctl/pkg/endpoint"
	"feedctl/pkg/logger"

	"github.com/google/uuid"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 8 << 20

type Options struct {
	BaseURL      string
	PostsPath    string
	LoginPath    string
	RegisterPath string
	APIKey       string

	HTTPClient *http.Client
}

// Client talks to the social API over REST. It implements service.PostsAPI
// and service.AuthAPI.
type Client struct {
	base         string
	postsPath    string
	loginPath    string
	registerPath string
	apiKey       string
	http         *http.Client
}

var (
	_ service.PostsAPI = (*Client)(nil)
	_ service.AuthAPI  = (*Client)(nil)
)

func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: bad base url %q", service.ErrInvalidRequest, opts.BaseURL)
	}

	c := &Client{
		base:         strings.TrimRight(opts.BaseURL, "/"),
		postsPath:    orDefault(opts.PostsPath, endpoint.PostsPath),
		loginPath:    orDefault(opts.LoginPath, endpoint.LoginPath),
		registerPath: orDefault(opts.RegisterPath, endpoint.RegisterPath),
		apiKey:       opts.APIKey,
		http:         opts.HTTPClient,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	in     any
	out    any
}

func (c *Client) do(ctx context.Context, r request) error {
	var body io.Reader
	if r.in != nil {
		data, err := json.Marshal(r.in)
		if err != nil {
			return fmt.Errorf("%w: encode body: %v", service.ErrInvalidRequest, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.base + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidRequest, err)
	}

	reqID := uuid.NewString()
	req.Header.Set(endpoint.AcceptHeader, endpoint.JSONContentType)
	req.Header.Set(endpoint.RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set(endpoint.ContentTypeHeader, endpoint.JSONContentType)
	}
	if r.token != "" {
		req.Header.Set(endpoint.AuthorizationHeader, endpoint.BearerPrefix+r.token)
	}
	if c.apiKey != "" {
		req.Header.Set(endpoint.APIKeyHeader, c.apiKey)
	}

	log := logger.FromContext(ctx).With("method", r.method, "path", r.path, "request_id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", service.ErrTransport, r.method, r.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", service.ErrTransport, err)
	}
	log.Debug("api call", "status", resp.StatusCode, "bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}
	if r.out == nil {
		return nil
	}
	if err := json.Unmarshal(data, r.out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", service.ErrInvalidResponse, r.method, r.path, err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) error {
	apiErr := &service.APIError{StatusCode: status}

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		for _, e := range body.Errors {
			if e.Message != "" {
				apiErr.Messages = append(apiErr.Messages, e.Message)
			}
		}
		if len(apiErr.Messages) == 0 && body.Message != "" {
			apiErr.Messages = []string{body.Message}
		}
	}
	if len(apiErr.Messages) == 0 {
		if text := strings.TrimSpace(string(data)); text != "" && len(text) < 256 {
			apiErr.Messages = []string{text}
		}
	}
	return apiErr
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
