// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
)

// NeedsEnv reports whether cmd needs config, store and client.
func NeedsEnv(cmd Command) bool {
	return cmd != CmdVersion && cmd != CmdHelp
}

// Run executes a line-mode command. The TUI is started by main.
func Run(ctx context.Context, cmd Command, args Args, env *Env) error {
	switch cmd {
	case CmdAsk:
		return HandleAsk(ctx, env, args)
	case CmdChat:
		return HandleChat(ctx, env, args)
	case CmdMode:
		return HandleMode(env, args)
	case CmdHistory:
		return HandleHistory(ctx, env, args)
	case CmdConfig:
		return HandleConfig(env, args)
	case CmdStatus:
		return HandleStatus(ctx, env, args)
	case CmdLogin:
		return HandleLogin(ctx, env, args)
	case CmdLogout:
		return HandleLogout(env)
	default:
		return fmt.Errorf("%s is not a line-mode command", cmd)
	}
}
