// Package client is a typed SDK for the parking REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
)

// TokenSource supplies the bearer token for each request. An empty token sends no header.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Options configures New.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     *zap.Logger
	// OnUnauthorized runs after any 401 answer to a request that carried a token.
	OnUnauthorized func()
}

// Client talks to the API and exposes one service per resource.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	logger         *zap.Logger
	onUnauthorized func()

	Auth     *AuthService
	Vehicles *VehicleService
	Slots    *SlotService
	Requests *SlotRequestService
	Users    *UserService
}

// New builds a client. Without an explicit HTTPClient the transport is traced with otelhttp.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		http:           httpClient,
		tokens:         opts.Tokens,
		logger:         logger,
		onUnauthorized: opts.OnUnauthorized,
	}
	c.Auth = &AuthService{c: c}
	c.Vehicles = &VehicleService{c: c}
	c.Slots = &SlotService{c: c}
	c.Requests = &SlotRequestService{c: c}
	c.Users = &UserService{c: c}
	return c
}

// ListParams are the query parameters shared by every list endpoint.
type ListParams struct {
	Page        int
	Limit       int
	Search      string
	Status      string
	VehicleType string
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		q.Set("search", s)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.VehicleType != "" {
		q.Set("vehicleType", p.VehicleType)
	}
	return q
}

type tokenKey struct{}

// WithToken makes requests sent with ctx carry token instead of the one from Options.Tokens.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// anonymousPaths are sent without a bearer token.
var anonymousPaths = map[string]bool{
	"/auth/login":    true,
	"/auth/register": true,
}

// do sends one request and returns the raw body of a successful answer.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := ""
	if !anonymousPaths[path] {
		if t, ok := ctx.Value(tokenKey{}).(string); ok {
			token = t
		} else if c.tokens != nil {
			token = c.tokens.Token()
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp.StatusCode, raw)
		c.logger.Debug("api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("code", apiErr.Code))
		if apiErr.Status == http.StatusUnauthorized && token != "" && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, apiErr
	}
	return raw, nil
}

func (c *Client) getOne(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeOne(raw, out)
}

func getPage[T any](ctx context.Context, c *Client, path string, params ListParams) (domain.Page[T], error) {
	raw, err := c.do(ctx, http.MethodGet, path, params.values(), nil)
	if err != nil {
		return domain.Page[T]{}, err
	}
	page, err := decodePage[T](raw)
	if err != nil {
		return domain.Page[T]{}, fmt.Errorf("GET %s: %w", path, err)
	}
	if page.Page == 0 {
		page.Page = params.Page
	}
	if page.Limit == 0 {
		page.Limit = params.Limit
	}
	return page, nil
}

func resourcePath(base, id string, suffix ...string) string {
	p := base + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
