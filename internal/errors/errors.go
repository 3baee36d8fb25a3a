// Package errors provides structured error types for panostitch operations.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindPath represents missing inputs and unusable output directories.
	KindPath
	// KindSDK represents a missing or incomplete stitching SDK installation.
	KindSDK
	// KindCommand represents external command execution errors.
	KindCommand
	// KindFFprobeParse represents FFprobe output parsing errors.
	KindFFprobeParse
	// KindNoStreamsFound represents a container without a usable video stream.
	KindNoStreamsFound
	// KindStitch represents a failed run of the stitching executable.
	KindStitch
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindUpload represents frame upload failures.
	KindUpload
	// KindCancelled represents user-cancelled operations.
	KindCancelled
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindPath:
		return "Path error"
	case KindSDK:
		return "SDK error"
	case KindCommand:
		return "Command error"
	case KindFFprobeParse:
		return "FFprobe parse error"
	case KindNoStreamsFound:
		return "No streams found"
	case KindStitch:
		return "Stitch error"
	case KindConfig:
		return "Configuration error"
	case KindUpload:
		return "Upload error"
	case KindCancelled:
		return "Operation cancelled"
	default:
		return "Unknown error"
	}
}

// CommandErrorKind represents the type of command error.
type CommandErrorKind int

const (
	// CommandStart means the command failed to start.
	CommandStart CommandErrorKind = iota
	// CommandFailed means the command returned non-zero exit status.
	CommandFailed
)

// CommandError represents an error from executing an external command.
type CommandError struct {
	Command    string
	Kind       CommandErrorKind
	ExitCode   int
	Stderr     string
	Underlying error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case CommandStart:
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	case CommandFailed:
		if e.Stderr != "" {
			return fmt.Sprintf("command %s failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("command %s error: %v", e.Command, e.Underlying)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// CoreError is the main error type for panostitch operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewPathError creates a new path-related error.
func NewPathError(message string) *CoreError {
	return &CoreError{Kind: KindPath, Message: message}
}

// NewSDKError creates an error for a missing SDK component.
func NewSDKError(message string) *CoreError {
	return &CoreError{Kind: KindSDK, Message: message}
}

// NewCommandStartError creates an error for when a command fails to start.
func NewCommandStartError(cmd string, err error) *CoreError {
	cmdErr := &CommandError{Command: cmd, Kind: CommandStart, Underlying: err}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandFailedError creates an error for when a command returns non-zero exit status.
func NewCommandFailedError(cmd string, exitCode int, stderr string) *CoreError {
	cmdErr := &CommandError{
		Command:  cmd,
		Kind:     CommandFailed,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewFFprobeParseError creates a new FFprobe parsing error.
func NewFFprobeParseError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindFFprobeParse, Message: message, Underlying: underlying}
}

// NewNoStreamsFoundError creates an error for a file without a video stream.
func NewNoStreamsFoundError(path string) *CoreError {
	return &CoreError{Kind: KindNoStreamsFound, Message: fmt.Sprintf("no video stream found in %s", path)}
}

// NewStitchError wraps a failed stitching run.
func NewStitchError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindStitch, Message: message, Underlying: underlying}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message}
}

// NewUploadError creates a new upload error.
func NewUploadError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindUpload, Message: message, Underlying: underlying}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// ExitCode returns the exit code carried by a wrapped CommandError, or -1.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Kind == CommandFailed {
		return cmdErr.ExitCode
	}
	return -1
}

// WrapExecError wraps an exec.ExitError into a CoreError.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return NewCommandFailedError(cmd, exitErr.ExitCode(), stderr)
	}
	return NewCommandStartError(cmd, err)
}
