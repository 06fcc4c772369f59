package agentcli

import "github.com/agentcli/agentcli-go/internal/errors"

// Re-export error types from internal package

// CLINotFoundError indicates the Agent CLI binary was not found.
type CLINotFoundError = errors.CLINotFoundError

// CLIConnectionError indicates failure to connect to the CLI.
type CLIConnectionError = errors.CLIConnectionError

// ProcessError indicates the CLI process failed.
type ProcessError = errors.ProcessError

// MessageParseError indicates message parsing failed.
type MessageParseError = errors.MessageParseError

// CLIJSONDecodeError indicates JSON parsing failed for CLI output.
type CLIJSONDecodeError = errors.CLIJSONDecodeError

// CLIBufferOverflowError indicates a CLI stdout line exceeded MaxBufferSize.
type CLIBufferOverflowError = errors.CLIBufferOverflowError

// CwdNotFoundError indicates an explicitly configured working directory
// does not exist.
type CwdNotFoundError = errors.CwdNotFoundError

// UserSwitchError indicates the CLI process could not be spawned under the
// requested OS user.
type UserSwitchError = errors.UserSwitchError

// AgentCLIError is the base interface for all SDK errors.
type AgentCLIError = errors.AgentCLIError

// Re-export sentinel errors from internal package.
var (
	// ErrClientNotConnected indicates the client is not connected.
	ErrClientNotConnected = errors.ErrClientNotConnected

	// ErrClientAlreadyConnected indicates the client is already connected.
	ErrClientAlreadyConnected = errors.ErrClientAlreadyConnected

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.ErrClientClosed

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.ErrTransportNotConnected

	// ErrRequestTimeout indicates a request timed out.
	ErrRequestTimeout = errors.ErrRequestTimeout
)
