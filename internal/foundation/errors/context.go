package errors

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrorContext is the structured detail attached to a ClassifiedError: paths,
// commands, exit codes.
type ErrorContext map[string]any

// Get returns the value stored under key.
func (c ErrorContext) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// GetString returns the value under key when it is a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// with returns a copy of c with key set; c itself is left untouched.
func (c ErrorContext) with(key string, value any) ErrorContext {
	out := make(ErrorContext, len(c)+1)
	maps.Copy(out, c)
	out[key] = value
	return out
}

// String renders the context as sorted key=value pairs.
func (c ErrorContext) String() string {
	keys := slices.Sorted(maps.Keys(c))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c[k]))
	}
	return strings.Join(parts, " ")
}
