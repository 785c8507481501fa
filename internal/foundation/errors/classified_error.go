package errors

import (
	stderrors "errors"
	"fmt"
)

// ClassifiedError is an error with a category, a severity and optional context.
// Build one with the ErrorBuilder constructors.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

func (e *ClassifiedError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.category, e.message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.category, e.message, e.cause)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }
func (e *ClassifiedError) Message() string         { return e.message }
func (e *ClassifiedError) Cause() error            { return e.cause }
func (e *ClassifiedError) Context() ErrorContext   { return e.context }

// IsFatal reports whether the error stops the pipeline.
func (e *ClassifiedError) IsFatal() bool { return e.severity != SeverityWarning }

// Detail is the message followed by the context, e.g.
// "command exited with non-zero status (command=make exit_code=2)".
func (e *ClassifiedError) Detail() string {
	if len(e.context) == 0 {
		return e.message
	}
	return e.message + " (" + e.context.String() + ")"
}

// WithContext returns a copy of e with key set in its context.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	out := *e
	out.context = e.context.with(key, value)
	return &out
}

// Is matches another ClassifiedError with the same category and message, so
// sentinel errors built once can be compared with errors.Is.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

// AsClassified returns the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HasCategory reports whether err's first ClassifiedError has category c.
func HasCategory(err error, c ErrorCategory) bool {
	ce, ok := AsClassified(err)
	return ok && ce.category == c
}

// HasSeverity reports whether err's first ClassifiedError has severity s.
func HasSeverity(err error, s ErrorSeverity) bool {
	ce, ok := AsClassified(err)
	return ok && ce.severity == s
}
