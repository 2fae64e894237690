// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend health and login state.
//
// Output Fields:
//   Server     Base URL and health
//   Version    LightRAG core/api version
//   Pipeline   Whether documents are being indexed
//   Auth       Guest mode, logged-in user or login required
//   Mode       Current query mode
//   History    Saved messages and storage backend

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/sladenchat-tui/internal/auth"
)

// statusTimeout bounds each backend check.
const statusTimeout = 10 * time.Second

// StatusReport is the --json payload of status.
type StatusReport struct {
	Server       string `json:"server"`
	Healthy      bool   `json:"healthy"`
	HealthError  string `json:"healthError,omitempty"`
	CoreVersion  string `json:"coreVersion,omitempty"`
	APIVersion   string `json:"apiVersion,omitempty"`
	Indexing     bool   `json:"indexing"`
	GuestMode    bool   `json:"guestMode"`
	Username     string `json:"username,omitempty"`
	TokenExpired bool   `json:"tokenExpired,omitempty"`
	Mode         string `json:"mode"`
	Messages     int    `json:"messages"`
	Storage      string `json:"storage"`
}

// HandleStatus handles the "status" command. An unreachable server is
// reported in the output, not returned as an error.
func HandleStatus(ctx context.Context, env *Env, args Args) error {
	report := collectStatus(ctx, env)

	if args.JSON {
		return NewJSONResponse("status", report).Print(env.Out)
	}

	fmt.Fprintln(env.Out, TitleStyle.Render("LightRAG status"))
	health := "healthy"
	if !report.Healthy {
		health = "disconnected"
	}
	fmt.Fprintln(env.Out, RenderKV("Server", report.Server)+" "+RenderStatus(health))
	if report.HealthError != "" {
		fmt.Fprintln(env.Out, RenderKV("", ErrorStyle.Render(report.HealthError)))
	}
	if report.CoreVersion != "" {
		fmt.Fprintln(env.Out, RenderKV("Version", report.CoreVersion+"/"+report.APIVersion))
	}
	if report.Indexing {
		fmt.Fprintln(env.Out, RenderKV("Pipeline", WarningStyle.Render("indexing")))
	}
	fmt.Fprintln(env.Out, RenderKV("Auth", describeAuth(report)))
	fmt.Fprintln(env.Out, RenderKV("Mode", report.Mode))
	fmt.Fprintln(env.Out, RenderKV("History", fmt.Sprintf("%d messages (%s)", report.Messages, report.Storage)))
	return nil
}

func collectStatus(ctx context.Context, env *Env) StatusReport {
	report := StatusReport{
		Server:  env.Client.BaseURL(),
		Mode:    env.Modes.Current().String(),
		Storage: env.Config.Storage.Backend,
	}

	hctx, cancel := context.WithTimeout(ctx, statusTimeout)
	health, err := env.Client.Health(hctx)
	cancel()
	if err != nil {
		report.HealthError = err.Error()
	} else {
		report.Healthy = health.Healthy()
		report.CoreVersion = health.CoreVersion
		report.APIVersion = health.APIVersion
		report.Indexing = health.PipelineBusy
	}

	actx, cancel := context.WithTimeout(ctx, statusTimeout)
	authStatus, err := env.Client.AuthStatus(actx)
	cancel()
	if err == nil && report.CoreVersion == "" {
		report.CoreVersion = authStatus.CoreVersion
		report.APIVersion = authStatus.APIVersion
	}

	id := auth.Describe(env.Client.Token(), authStatus.GuestMode(), env.now())
	report.GuestMode = id.Guest
	report.Username = id.Username
	report.TokenExpired = id.Expired

	if rec, err := env.Store.Load(ctx); err == nil {
		report.Messages = len(rec.Messages)
	}
	return report
}

func describeAuth(r StatusReport) string {
	switch {
	case r.GuestMode:
		return WarningStyle.Render("guest mode")
	case r.TokenExpired:
		return ErrorStyle.Render("token expired, run sladen login")
	case r.Username != "":
		return "logged in as " + r.Username
	default:
		return DimStyle.Render("not logged in")
	}
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
