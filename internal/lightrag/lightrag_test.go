// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lightrag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
)

func sampleRequest() *QueryRequest {
	return &QueryRequest{
		Query:        "What are the main arguments?",
		Mode:         querymode.ModeHybrid,
		HistoryTurns: 3,
		ConversationHistory: []model.HistoryEntry{
			{Role: model.RoleUser, Content: "hi"},
			{Role: model.RoleAssistant, Content: "hello"},
		},
	}
}

// =============================================================================
// REQUEST SHAPE TESTS
// =============================================================================

func TestQueryRequest_FieldNames(t *testing.T) {
	req := sampleRequest()
	Passthrough{ResponseType: "Bullet Points", TopK: 10}.Apply(req)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"query", "mode", "conversation_history", "stream", "history_turns", "response_type", "top_k"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "user_prompt", "empty passthrough fields are omitted")
	assert.Equal(t, "hybrid", raw["mode"])

	history := raw["conversation_history"].([]interface{})
	first := history[0].(map[string]interface{})
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "hi", first["content"])
}

// =============================================================================
// QUERY TESTS
// =============================================================================

func TestQueryText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body QueryRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.False(t, body.Stream)
		assert.Equal(t, querymode.ModeHybrid, body.Mode)
		assert.Len(t, body.ConversationHistory, 2)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"42"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "secret", Token: "tok"})
	resp, err := client.QueryText(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "42", resp.Response)
}

func TestQueryText_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		apiKey   string
		wantType ErrorType
	}{
		{"server error", http.StatusInternalServerError, "", ErrTypeServer},
		{"unauthorized", http.StatusUnauthorized, "", ErrTypeUnauthorized},
		{"forbidden with key", http.StatusForbidden, "bad", ErrTypeInvalidAPIKey},
		{"forbidden without key", http.StatusForbidden, "", ErrTypeUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"detail":"nope"}`))
			}))
			defer server.Close()

			client := NewClient(Config{BaseURL: server.URL, APIKey: tc.apiKey})
			_, err := client.QueryText(context.Background(), sampleRequest())
			require.Error(t, err)

			var ce *ClientError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.wantType, ce.Type)
			assert.Equal(t, tc.status, ce.StatusCode)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestQueryText_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: url})
	_, err := client.QueryText(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ErrConnection)
}

func TestQueryText_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := client.QueryText(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ErrTimeout)
}

// =============================================================================
// STREAM TESTS
// =============================================================================

func streamServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query/stream", r.URL.Path)

		var req QueryRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(body))
	}))
}

func TestQueryTextStream_ChunksInOrder(t *testing.T) {
	server := streamServer(t, "{\"response\":\"Hello\"}\n{\"response\":\", \"}\n\n{\"response\":\"world\"}\n")
	defer server.Close()

	var chunks, errs []string
	client := NewClient(Config{BaseURL: server.URL})
	err := client.QueryTextStream(context.Background(), sampleRequest(),
		func(s string) { chunks = append(chunks, s) },
		func(s string) { errs = append(errs, s) })

	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", ", ", "world"}, chunks)
	assert.Empty(t, errs)
}

func TestQueryTextStream_ErrorFragments(t *testing.T) {
	server := streamServer(t, "{\"response\":\"Partial answer\"}\n{\"error\":\"rate limited\"}\n{\"response\":\" more\"}")
	defer server.Close()

	var chunks, errs []string
	client := NewClient(Config{BaseURL: server.URL})
	err := client.QueryTextStream(context.Background(), sampleRequest(),
		func(s string) { chunks = append(chunks, s) },
		func(s string) { errs = append(errs, s) })

	require.NoError(t, err, "stream-level errors go to onError, not the return value")
	assert.Equal(t, []string{"Partial answer", " more"}, chunks, "last line without newline is still delivered")
	assert.Equal(t, []string{"rate limited"}, errs)
}

func TestQueryTextStream_MalformedLine(t *testing.T) {
	server := streamServer(t, "{\"response\":\"ok\"}\nnot-json\n")
	defer server.Close()

	var errs []string
	client := NewClient(Config{BaseURL: server.URL})
	err := client.QueryTextStream(context.Background(), sampleRequest(),
		func(string) {},
		func(s string) { errs = append(errs, s) })

	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.True(t, strings.HasPrefix(errs[0], ParseErrorPrefix))
}

func TestQueryTextStream_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	err := client.QueryTextStream(context.Background(), sampleRequest(), func(string) {}, func(string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestStreamReader_Stats(t *testing.T) {
	r := NewStreamReader(strings.NewReader("{\"response\":\"a\"}\n{\"error\":\"x\"}\n{}\n"))
	require.NoError(t, r.Process(context.Background(), nil, nil))

	chunks, errs := r.Stats()
	assert.Equal(t, 1, chunks)
	assert.Equal(t, 1, errs)
}

func TestStreamReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewStreamReader(strings.NewReader("{\"response\":\"a\"}\n"))
	assert.ErrorIs(t, r.Process(ctx, nil, nil), context.Canceled)
}

// =============================================================================
// HEALTH & AUTH TESTS
// =============================================================================

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"healthy","core_version":"1.4.0","api_version":"0190","pipeline_busy":true}`))
	}))
	defer server.Close()

	status, err := NewClient(Config{BaseURL: server.URL}).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy())
	assert.True(t, status.PipelineBusy)
	assert.Equal(t, "1.4.0", status.CoreVersion)
}

func TestAuthStatus_Cached(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"auth_configured":false,"access_token":"guest","auth_mode":"disabled","core_version":"1.4.0","api_version":"0190"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	first, err := client.AuthStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, first.GuestMode())
	assert.Equal(t, "1.4.0/0190", first.VersionDisplay())

	first.CoreVersion = "mutated"
	second, err := client.AuthStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", second.CoreVersion, "cached value must not be shared")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	client.SetToken("new")
	_, err = client.AuthStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "SetToken drops the cache")
}

func TestClientError_Is(t *testing.T) {
	err := &ClientError{Type: ErrTypeUnauthorized, Message: "401 Unauthorized"}
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "unauthorized", ErrTypeUnauthorized.String())
}
