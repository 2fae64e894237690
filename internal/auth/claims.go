// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth reads the identity carried in a LightRAG bearer token.
//
// The client never holds the server's signing secret, so tokens are decoded
// without verification. The result is for display only (username, guest
// badge, expiry hint); the server remains the authority on every request.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleGuest is the role the server assigns to tokens issued without login.
const RoleGuest = "guest"

// ErrNoToken is returned for an empty token.
var ErrNoToken = errors.New("no token")

// Claims are the fields LightRAG puts in its tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role     string                 `json:"role,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Parse decodes token without checking its signature.
func Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Username returns the subject, which LightRAG sets to the account name.
func (c *Claims) Username() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// IsGuest reports whether the token was issued for guest access.
func (c *Claims) IsGuest() bool {
	return c != nil && c.Role == RoleGuest
}

// Expired reports whether the token's exp is at or before now. Tokens without
// exp never expire.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// =============================================================================
// IDENTITY
// =============================================================================

// Identity is what the header shows about the current user.
type Identity struct {
	Username string
	Guest    bool
	Expired  bool
}

// Describe derives the identity from a token and the server's auth mode.
// Guest mode wins when the server has auth disabled, whatever the token says.
// An unreadable token yields an anonymous identity.
func Describe(token string, serverGuestMode bool, now time.Time) Identity {
	id := Identity{Guest: serverGuestMode}

	claims, err := Parse(token)
	if err != nil {
		return id
	}
	id.Expired = claims.Expired(now)
	if claims.IsGuest() {
		id.Guest = true
		return id
	}
	id.Username = claims.Username()
	return id
}
