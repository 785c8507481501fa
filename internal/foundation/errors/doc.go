// Package errors provides the classified error primitives used across cjbootstrap.
//
// Every failure the bootstrap pipeline can produce is terminal; the category decides
// the process exit code and how the CLI presents the failure.
//
// Key features:
//   - ErrorCategory: config, filesystem, command, artifact, lock, canceled, internal
//   - ErrorSeverity: fatal, warning
//   - ClassifiedError: structured error with category, severity, cause and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit code mapping and user-facing formatting
//
// Example usage:
//
//	err := errors.CommandError("command exited with non-zero status").
//		WithContext("command", "make -j32").
//		WithContext("exit_code", 2).
//		WithCause(runErr).
//		Build()
package errors
