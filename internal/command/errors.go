// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"github.com/samber/oops"
)

// Error codes for command table and dispatch failures.
const (
	CodeUnknownCommand   = "UNKNOWN_COMMAND"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeInvalidArgs      = "INVALID_ARGS"
	CodeWorldError       = "WORLD_ERROR"
	CodeInvalidName      = "INVALID_NAME"
	CodeCommandExists    = "COMMAND_EXISTS"
	CodeUnknownSwitch    = "UNKNOWN_SWITCH"
	CodeAlreadyFinalized = "ALREADY_FINALIZED"
	CodeNotFinalized     = "NOT_FINALIZED"
	CodeWrongPhase       = "WRONG_LOAD_PHASE"
	CodeNilCollaborator  = "NIL_COLLABORATOR"
)

// ErrUnknownCommand creates an error for a command name that is not in the
// table.
func ErrUnknownCommand(cmd string) error {
	return oops.Code(CodeUnknownCommand).
		With("command", cmd).
		Errorf("unknown command: %s", cmd)
}

// ErrPermissionDenied creates an error for permission denial.
func ErrPermissionDenied(cmd string) error {
	return oops.Code(CodePermissionDenied).
		With("command", cmd).
		Errorf("permission denied for command %s", cmd)
}

// ErrInvalidArgs creates an error for invalid arguments. The message is
// shown to the player.
func ErrInvalidArgs(cmd, message string) error {
	return oops.Code(CodeInvalidArgs).
		With("command", cmd).
		With("message", message).
		Errorf("invalid arguments")
}

// WorldError creates an error for world state issues with a player-facing
// message.
// An oops cause is kept as context so that its code does not shadow
// CodeWorldError.
func WorldError(message string, cause error) error {
	builder := oops.Code(CodeWorldError).With("message", message)
	if cause == nil {
		return builder.Errorf("%s", message)
	}
	if _, ok := oops.AsOops(cause); ok {
		return builder.With("cause", cause.Error()).Errorf("%s", message)
	}
	return builder.Wrap(cause)
}

// ErrCommandExists creates an error for adding a command that exists.
func ErrCommandExists(cmd string) error {
	return oops.Code(CodeCommandExists).
		With("command", cmd).
		Errorf("Command %s already exists.", cmd)
}

// PlayerMessage extracts a player-facing message from an error.
func PlayerMessage(err error) string {
	if err == nil {
		return "Something went wrong. Try again."
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Something went wrong. Try again."
	}

	switch oopsErr.Code() {
	case CodeUnknownCommand:
		return "No such command."
	case CodePermissionDenied:
		return "Permission denied."
	case CodeInvalidArgs, CodeWorldError:
		if msg, ok := oopsErr.Context()["message"].(string); ok && msg != "" {
			return msg
		}
		return "Invalid arguments."
	case CodeInvalidName:
		return "Bad command name."
	case CodeCommandExists:
		if cmd, ok := oopsErr.Context()["command"].(string); ok {
			return "Command " + cmd + " already exists."
		}
		return "Command already exists."
	default:
		return "Something went wrong. Try again."
	}
}
