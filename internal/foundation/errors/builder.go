package errors

// ErrorBuilder assembles a ClassifiedError. Errors are fatal unless Warning is
// called.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a fatal error of the given category.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{category: category, severity: SeverityFatal, message: message}}
}

// WrapError starts an error of the given category caused by err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.with(key, value)
	return b
}

// Warning downgrades the error so the pipeline records it and continues.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	b.err.severity = SeverityWarning
	return b
}

func (b *ErrorBuilder) Build() *ClassifiedError {
	out := b.err
	return &out
}

func ConfigError(message string) *ErrorBuilder     { return NewError(CategoryConfig, message) }
func ValidationError(message string) *ErrorBuilder { return NewError(CategoryValidation, message) }
func FileSystemError(message string) *ErrorBuilder { return NewError(CategoryFileSystem, message) }
func CommandError(message string) *ErrorBuilder    { return NewError(CategoryCommand, message) }
func LockError(message string) *ErrorBuilder       { return NewError(CategoryLock, message) }
func CanceledError(message string) *ErrorBuilder   { return NewError(CategoryCanceled, message) }
func InternalError(message string) *ErrorBuilder   { return NewError(CategoryInternal, message) }

// ArtifactMissing is raised when a build succeeded without producing its binary.
func ArtifactMissing(message string) *ErrorBuilder { return NewError(CategoryArtifact, message) }
