package errors

// ErrorCategory is the failure class of an error. It selects the process exit
// code and the wording of the diagnostic.
type ErrorCategory string

const (
	// CategoryConfig: missing or unparsable configuration, a root that does not
	// resolve to an absolute path.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// CategoryFileSystem: a path the operator declined to create, a root that is
	// not writable, a bad overlay source.
	CategoryFileSystem ErrorCategory = "filesystem"

	// CategoryCommand: a delegated program exited non-zero or did not start.
	CategoryCommand ErrorCategory = "command"

	// CategoryArtifact: compilation reported success but the binary is absent.
	CategoryArtifact ErrorCategory = "artifact"

	CategoryLock     ErrorCategory = "lock"
	CategoryCanceled ErrorCategory = "canceled"
	CategoryInternal ErrorCategory = "internal"
)

var categoryExitCodes = map[ErrorCategory]int{
	CategoryValidation: ExitUsage,
	CategoryConfig:     ExitConfig,
	CategoryFileSystem: ExitFileSystem,
	CategoryCommand:    ExitCommand,
	CategoryArtifact:   ExitArtifact,
	CategoryLock:       ExitLock,
	CategoryCanceled:   ExitInterrupted,
	CategoryInternal:   ExitInternal,
}

// ExitCode is the process exit code for the category.
func (c ErrorCategory) ExitCode() int {
	if code, ok := categoryExitCodes[c]; ok {
		return code
	}
	return ExitGeneral
}

// ErrorSeverity tells the pipeline whether a failure stops the run.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityWarning ErrorSeverity = "warning" // the run continues and ends with outcome "warning"
)
