package git

import (
	"fmt"
	"strings"
)

// Base typed git errors enabling structured classification without string parsing upstream.
type AuthError struct {
	Op, URL string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s auth error for %s: %v", e.Op, e.URL, e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Op, URL string
	Err     error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found %s: %v", e.Op, e.URL, e.Err) }
func (e *NotFoundError) Unwrap() error { return e.Err }

type BranchNotFoundError struct {
	URL, Branch string
	Err         error
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s not found in %s: %v", e.Branch, e.URL, e.Err)
}
func (e *BranchNotFoundError) Unwrap() error { return e.Err }

type UnsupportedProtocolError struct {
	Op, URL string
	Err     error
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("%s unsupported protocol %s: %v", e.Op, e.URL, e.Err)
}
func (e *UnsupportedProtocolError) Unwrap() error { return e.Err }

type RateLimitError struct {
	Op, URL string
	Err     error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited %s: %v", e.Op, e.URL, e.Err)
}
func (e *RateLimitError) Unwrap() error { return e.Err }

type NetworkTimeoutError struct {
	Op, URL string
	Err     error
}

func (e *NetworkTimeoutError) Error() string {
	return fmt.Sprintf("%s timeout %s: %v", e.Op, e.URL, e.Err)
}
func (e *NetworkTimeoutError) Unwrap() error { return e.Err }

// classifyCloneError wraps go-git clone failures into typed variants when possible.
func classifyCloneError(url, branch string, err error) error {
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "auth fail") || strings.Contains(l, "invalid username or password"):
		return &AuthError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "couldn't find remote ref") || strings.Contains(l, "reference not found"):
		return &BranchNotFoundError{URL: url, Branch: branch, Err: err}
	case strings.Contains(l, "not found") || strings.Contains(l, "repository does not exist"):
		return &NotFoundError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "unsupported protocol") || strings.Contains(l, "protocol not supported"):
		return &UnsupportedProtocolError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "rate limit") || strings.Contains(l, "too many requests"):
		return &RateLimitError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "timeout"):
		return &NetworkTimeoutError{Op: "clone", URL: url, Err: err}
	default:
		return fmt.Errorf("failed to clone repository %s: %w", url, err)
	}
}
