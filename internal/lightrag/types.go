// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lightrag

import (
	"strings"

	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// QueryRequest is the body for /query and /query/stream. Field names match
// the server's QueryRequest schema.
type QueryRequest struct {
	Query               string               `json:"query"`
	Mode                querymode.Mode       `json:"mode"`
	ConversationHistory []model.HistoryEntry `json:"conversation_history"`
	Stream              bool                 `json:"stream"`
	HistoryTurns        int                  `json:"history_turns"`

	// Passthrough settings; zero values are left to the server defaults.
	ResponseType             string   `json:"response_type,omitempty"`
	TopK                     int      `json:"top_k,omitempty"`
	ChunkTopK                int      `json:"chunk_top_k,omitempty"`
	MaxTokenForTextUnit      int      `json:"max_token_for_text_unit,omitempty"`
	MaxTokenForGlobalContext int      `json:"max_token_for_global_context,omitempty"`
	MaxTokenForLocalContext  int      `json:"max_token_for_local_context,omitempty"`
	OnlyNeedContext          bool     `json:"only_need_context,omitempty"`
	OnlyNeedPrompt           bool     `json:"only_need_prompt,omitempty"`
	HLKeywords               []string `json:"hl_keywords,omitempty"`
	LLKeywords               []string `json:"ll_keywords,omitempty"`
	UserPrompt               string   `json:"user_prompt,omitempty"`
}

// Passthrough carries the settings copied verbatim into every request.
type Passthrough struct {
	ResponseType             string
	TopK                     int
	ChunkTopK                int
	MaxTokenForTextUnit      int
	MaxTokenForGlobalContext int
	MaxTokenForLocalContext  int
	OnlyNeedContext          bool
	OnlyNeedPrompt           bool
	HLKeywords               []string
	LLKeywords               []string
	UserPrompt               string
}

// Apply copies the passthrough settings onto req.
func (p Passthrough) Apply(req *QueryRequest) {
	req.ResponseType = p.ResponseType
	req.TopK = p.TopK
	req.ChunkTopK = p.ChunkTopK
	req.MaxTokenForTextUnit = p.MaxTokenForTextUnit
	req.MaxTokenForGlobalContext = p.MaxTokenForGlobalContext
	req.MaxTokenForLocalContext = p.MaxTokenForLocalContext
	req.OnlyNeedContext = p.OnlyNeedContext
	req.OnlyNeedPrompt = p.OnlyNeedPrompt
	req.HLKeywords = append([]string(nil), p.HLKeywords...)
	req.LLKeywords = append([]string(nil), p.LLKeywords...)
	req.UserPrompt = p.UserPrompt
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// QueryResponse is the body returned by /query.
type QueryResponse struct {
	Response string `json:"response"`
}

// streamLine is one NDJSON line from /query/stream.
type streamLine struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HealthStatus is the body returned by /health.
type HealthStatus struct {
	Status           string                 `json:"status"`
	WorkingDirectory string                 `json:"working_directory,omitempty"`
	InputDirectory   string                 `json:"input_directory,omitempty"`
	CoreVersion      string                 `json:"core_version,omitempty"`
	APIVersion       string                 `json:"api_version,omitempty"`
	PipelineBusy     bool                   `json:"pipeline_busy,omitempty"`
	Configuration    map[string]interface{} `json:"configuration,omitempty"`
}

// Healthy reports whether the server declared itself healthy.
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

// Summary is a one-line description for status displays.
func (h *HealthStatus) Summary() string {
	if h == nil {
		return ""
	}
	var parts []string
	if h.CoreVersion != "" {
		parts = append(parts, "LightRAG "+h.CoreVersion)
	}
	if h.PipelineBusy {
		parts = append(parts, "indexing")
	}
	if !h.Healthy() && h.Status != "" {
		parts = append(parts, h.Status)
	}
	return strings.Join(parts, ", ")
}

// AuthStatus is the body returned by /auth-status.
type AuthStatus struct {
	AuthConfigured   bool   `json:"auth_configured"`
	AccessToken      string `json:"access_token,omitempty"`
	TokenType        string `json:"token_type,omitempty"`
	AuthMode         string `json:"auth_mode,omitempty"`
	Message          string `json:"message,omitempty"`
	CoreVersion      string `json:"core_version,omitempty"`
	APIVersion       string `json:"api_version,omitempty"`
	WebUITitle       string `json:"webui_title,omitempty"`
	WebUIDescription string `json:"webui_description,omitempty"`
}

// GuestMode reports whether the server runs without login.
func (a *AuthStatus) GuestMode() bool {
	return a != nil && (!a.AuthConfigured || a.AuthMode == "disabled")
}

// VersionDisplay returns "core/api", or "" when either is unknown.
func (a *AuthStatus) VersionDisplay() string {
	if a == nil || a.CoreVersion == "" || a.APIVersion == "" {
		return ""
	}
	return a.CoreVersion + "/" + a.APIVersion
}
