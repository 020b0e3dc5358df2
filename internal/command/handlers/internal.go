// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"fmt"

	"github.com/holomush/pennmush/internal/command"
)

// HuhHandler answers input that matched nothing.
func HuhHandler(ctx context.Context, inv *command.Invocation) error {
	inv.Notify(ctx, command.HuhMessage)
	return nil
}

// WarnOnMissingHandler runs for input that starts with '['. It warns the
// executor's owner that the code has no command.
func WarnOnMissingHandler(ctx context.Context, inv *command.Invocation) error {
	d := inv.Dispatcher()
	d.Notify(ctx, d.Graph().Owner(inv.Executor),
		fmt.Sprintf("No command found in code by %s - don't start code with functions.", inv.Executor))
	return nil
}

// UnimplementedHandler runs for commands added with @command/add that
// nothing overrides.
func UnimplementedHandler(ctx context.Context, inv *command.Invocation) error {
	inv.Notify(ctx, "This command has not been implemented.")
	return nil
}
