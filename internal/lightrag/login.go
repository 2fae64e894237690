// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lightrag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// LoginResult is what /login hands back on success.
type LoginResult struct {
	AccessToken string
	TokenType   string
	AuthMode    string
	CoreVersion string
	APIVersion  string
}

// Login exchanges a username and password for a bearer token. The server's
// /login endpoint speaks the OAuth2 password grant, so the exchange goes
// through x/oauth2. On success the token is installed on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("username is required")
	}

	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/login",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		c.logger.Warn("login failed", zap.String("username", username), zap.Error(err))
		return nil, loginError(err)
	}

	result := &LoginResult{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		AuthMode:    extraString(tok, "auth_mode"),
		CoreVersion: extraString(tok, "core_version"),
		APIVersion:  extraString(tok, "api_version"),
	}
	c.SetToken(tok.AccessToken)
	c.logger.Info("logged in", zap.String("username", username), zap.String("auth_mode", result.AuthMode))
	return result, nil
}

func extraString(tok *oauth2.Token, key string) string {
	if v, ok := tok.Extra(key).(string); ok {
		return v
	}
	return ""
}

// loginError maps an oauth2 failure onto the client's error types.
func loginError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		status := rerr.Response.StatusCode
		errType := ErrTypeServer
		if status == 400 || status == 401 || status == 403 {
			errType = ErrTypeUnauthorized
		}
		msg := fmt.Sprintf("login rejected (%d)", status)
		if detail := strings.TrimSpace(string(rerr.Body)); detail != "" {
			msg += ": " + detail
		}
		return &ClientError{Type: errType, Message: msg, StatusCode: status}
	}
	return transportError(err)
}
