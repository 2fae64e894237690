// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - Exchange credentials for an access token and keep it in the
// config file.
//
// Examples:
//   sladen login                 Prompt for username and password
//   sladen login admin           Prompt for the password only
//   SLADEN_PASSWORD=... sladen login admin
//   sladen logout

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/sladenchat-tui/internal/auth"
	"github.com/jeranaias/sladenchat-tui/internal/config"
)

const loginUsage = "sladen login [username] [--password-stdin]"

// HandleLogin handles the "login" command.
func HandleLogin(ctx context.Context, env *Env, args Args) error {
	parser, err := NewArgParser(args.Raw)
	if err != nil {
		return usageErr(loginUsage, "%v", err)
	}

	// Ask the server first: in guest mode there is nothing to log in to.
	if st, err := env.Client.AuthStatus(ctx); err == nil && st.GuestMode() {
		fmt.Fprintln(env.Out, WarningStyle.Render("The server runs without login (guest mode)."))
		return nil
	}

	reader := bufio.NewReader(env.In)

	username := parser.Subcommand()
	if username == "" {
		fmt.Fprint(env.Err, "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return usageErr(loginUsage, "no username given")
		}
		username = strings.TrimSpace(line)
	}

	password, err := readPassword(env, reader, parser.Switch("password-stdin"))
	if err != nil {
		return err
	}

	result, err := env.Client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	if err := config.Update(func(c *config.Config) error {
		c.Server.Token = result.AccessToken
		return nil
	}); err != nil {
		return &CommandError{Command: "login", Action: "save", Reason: "cannot store token", Err: err}
	}

	id := auth.Describe(result.AccessToken, result.AuthMode == "disabled", env.now())
	who := id.Username
	if who == "" {
		who = username
	}
	if id.Guest {
		who += " (guest)"
	}
	fmt.Fprintln(env.Out, SuccessStyle.Render("Logged in as ")+who)
	return nil
}

// readPassword takes the password from SLADEN_PASSWORD, a piped stdin, or
// an echo-free prompt, in that order.
func readPassword(env *Env, reader *bufio.Reader, fromStdin bool) (string, error) {
	if p := os.Getenv("SLADEN_PASSWORD"); p != "" {
		return p, nil
	}
	if fromStdin || !IsTTY() {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", usageErr(loginUsage, "no password given")
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(env.Err, "Password: ")
	password, err := ReadPassword()
	fmt.Fprintln(env.Err)
	if err != nil {
		return "", &CommandError{Command: "login", Action: "prompt", Reason: "cannot read password", Err: err}
	}
	return password, nil
}

// HandleLogout handles the "logout" command.
func HandleLogout(env *Env) error {
	if config.Global().Server.Token == "" {
		fmt.Fprintln(env.Out, DimStyle.Render("Not logged in."))
		return nil
	}
	if err := config.Update(func(c *config.Config) error {
		c.Server.Token = ""
		return nil
	}); err != nil {
		return &CommandError{Command: "logout", Action: "save", Reason: "cannot remove token", Err: err}
	}
	env.Client.SetToken("")
	fmt.Fprintln(env.Out, SuccessStyle.Render("Logged out."))
	return nil
}
