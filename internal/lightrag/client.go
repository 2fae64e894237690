// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lightrag provides the HTTP client for the LightRAG server API.
package lightrag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/jeranaias/sladenchat-tui/internal/logging"
)

// DefaultBaseURL is where a local LightRAG server listens.
const DefaultBaseURL = "http://localhost:9621"

// authStatusKey is the cache key for /auth-status.
const authStatusKey = "auth-status"

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds configuration options for the LightRAG client.
type Config struct {
	// BaseURL is the server address (default: http://localhost:9621).
	BaseURL string

	// APIKey is sent as X-API-Key when set.
	APIKey string

	// Token is sent as a bearer token when set.
	Token string

	// Timeout bounds single-shot requests and the wait for stream headers.
	// A stream that has started may run longer (default: 120s).
	Timeout time.Duration

	// AuthStatusTTL is how long /auth-status answers are reused (default: 5m).
	AuthStatusTTL time.Duration

	Logger *zap.Logger
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to a LightRAG server. It is safe for concurrent use.
//
// Example:
//
//	client := lightrag.NewClient(lightrag.Config{BaseURL: "http://localhost:9621"})
//	err := client.QueryTextStream(ctx, req,
//	    func(chunk string) { fmt.Print(chunk) },
//	    func(msg string) { fmt.Fprintln(os.Stderr, msg) })
type Client struct {
	baseURL string
	apiKey  string

	tokenMu sync.RWMutex
	token   string

	httpClient   *http.Client
	streamClient *http.Client
	authCache    *cache.Cache
	logger       *zap.Logger
}

// NewClient creates a client, filling in defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.AuthStatusTTL == 0 {
		cfg.AuthStatusTTL = 5 * time.Minute
	}

	// Streams can outlive any fixed deadline, so only the header wait is bounded.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		token:        cfg.Token,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		streamClient: &http.Client{Transport: transport},
		authCache:    cache.New(cfg.AuthStatusTTL, 2*cfg.AuthStatusTTL),
		logger:       logging.OrNop(cfg.Logger).Named("lightrag"),
	}
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the bearer token, e.g. after login or when the server
// hands out a guest token. Cached auth status is dropped.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
	c.authCache.Delete(authStatusKey)
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token
}

// =============================================================================
// QUERY
// =============================================================================

// QueryText sends a single-shot query and returns the full answer.
func (c *Client) QueryText(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	body := *req
	body.Stream = false

	resp, err := c.post(ctx, c.httpClient, "/query", &body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeDecode, Message: "failed to decode query response", Cause: err}
	}
	return &result, nil
}

// QueryTextStream sends a streaming query. Chunks go to onChunk in order and
// server-reported error fragments go to onError; neither ends the call. An
// error is returned only when the request cannot be made or the server
// answers with a non-2xx status, or when reading the body fails.
func (c *Client) QueryTextStream(ctx context.Context, req *QueryRequest, onChunk, onError func(string)) error {
	body := *req
	body.Stream = true

	resp, err := c.post(ctx, c.streamClient, "/query/stream", &body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := NewStreamReader(resp.Body)
	logError := func(msg string) {
		if strings.HasPrefix(msg, ParseErrorPrefix) {
			c.logger.Warn("malformed stream line", zap.String("line", msg))
		}
		if onError != nil {
			onError(msg)
		}
	}

	start := time.Now()
	if err := reader.Process(ctx, onChunk, logError); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &ClientError{Type: ErrTypeConnection, Message: "stream interrupted", Cause: err}
	}

	chunks, errs := reader.Stats()
	c.logger.Debug("stream finished",
		zap.Int("chunks", chunks),
		zap.Int("errors", errs),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// =============================================================================
// HEALTH & AUTH
// =============================================================================

// Health queries /health.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AuthStatus queries /auth-status. Answers are cached for the configured TTL
// since the web UI checks this once per session as well.
func (c *Client) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	if cached, ok := c.authCache.Get(authStatusKey); ok {
		status := *cached.(*AuthStatus)
		return &status, nil
	}

	var status AuthStatus
	if err := c.getJSON(ctx, "/auth-status", &status); err != nil {
		return nil, err
	}
	c.authCache.SetDefault(authStatusKey, &status)

	out := status
	return &out, nil
}

// =============================================================================
// TRANSPORT HELPERS
// =============================================================================

func (c *Client) post(ctx context.Context, hc *http.Client, path string, payload interface{}) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(hc, req)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeDecode, Message: "failed to decode " + path + " response", Cause: err}
	}
	return nil
}

// do sends req with auth headers and turns non-2xx answers into errors. On
// success the caller owns resp.Body.
func (c *Client) do(hc *http.Client, req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("request", zap.String("method", req.Method), zap.String("path", req.URL.Path))

	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("path", req.URL.Path), zap.Error(err))
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		c.logger.Warn("non-2xx response",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode))
		return nil, statusError(resp, body, c.apiKey != "")
	}
	return resp, nil
}
