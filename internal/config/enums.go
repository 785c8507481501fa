package config

import (
	"fmt"
	"sort"
	"strings"
)

// enumNormalizer maps loosely written configuration values onto typed enums.
type enumNormalizer[T ~string] struct {
	name   string
	values map[string]T
	keys   []string
}

func newEnumNormalizer[T ~string](name string, values ...T) *enumNormalizer[T] {
	n := &enumNormalizer[T]{name: name, values: make(map[string]T, len(values))}
	for _, v := range values {
		key := normalizeKey(string(v))
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

func (n *enumNormalizer[T]) normalize(raw T) (T, error) {
	if v, ok := n.values[normalizeKey(string(raw))]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", n.name, string(raw), n.keys)
}

func normalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
}

// CloneBackend selects how the toolchain repository is cloned.
type CloneBackend string

const (
	CloneBackendExec  CloneBackend = "exec"   // git binary through the command runner
	CloneBackendGoGit CloneBackend = "go-git" // in-process clone
)

// AuthType selects the go-git authentication method.
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
	AuthTypeSSH   AuthType = "ssh"
)

// StripFailurePolicy decides whether a failing strip aborts the run.
type StripFailurePolicy string

const (
	StripFailureFatal StripFailurePolicy = "fatal"
	StripFailureWarn  StripFailurePolicy = "warn"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var (
	cloneBackends = newEnumNormalizer("clone_backend", CloneBackendExec, CloneBackendGoGit)
	authTypes     = newEnumNormalizer("auth.type", AuthTypeNone, AuthTypeToken, AuthTypeBasic, AuthTypeSSH)
	stripPolicies = newEnumNormalizer("strip_failure", StripFailureFatal, StripFailureWarn)
	logLevels     = newEnumNormalizer("logging.level", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)
	logFormats    = newEnumNormalizer("logging.format", LogFormatJSON, LogFormatText)
)

// ParseLogFormat normalizes a --log-format style value.
func ParseLogFormat(raw string) (LogFormat, error) {
	return logFormats.normalize(LogFormat(raw))
}
